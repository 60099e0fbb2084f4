package huffblock

// decodeEntry is one slot of a table-driven Huffman decoder: every index
// whose top nbBits bits match a codeword's value maps to that codeword's
// symbol and length.
type decodeEntry struct {
	symbol byte
	nbBits uint8
}

// buildDecodeTable expands table into a 1<<maxBits lookup table suitable
// for peek-then-skip decoding.
func buildDecodeTable(table *CodeTable, maxBits int) []decodeEntry {
	dec := make([]decodeEntry, 1<<uint(maxBits))
	for s := 0; s < symbolCount; s++ {
		e := table.entries[s]
		if e.NbBits == 0 {
			continue
		}
		shift := maxBits - int(e.NbBits)
		start := int(e.Value) << uint(shift)
		span := 1 << uint(shift)
		entry := decodeEntry{symbol: byte(s), nbBits: e.NbBits}
		for i := 0; i < span; i++ {
			dec[start+i] = entry
		}
	}
	return dec
}

func decodePayload(dst []byte, src []byte, table *CodeTable) error {
	if len(dst) == 0 {
		return nil
	}
	maxBits := int(table.maxBits)
	if maxBits == 0 {
		return errf(Corruption, "empty code table for non-empty payload")
	}
	dec := buildDecodeTable(table, maxBits)

	r := NewBitReader(src)
	for i := range dst {
		v := r.PeekBits(maxBits)
		e := dec[v]
		if e.nbBits == 0 {
			return errf(Corruption, "invalid codeword at symbol %d", i)
		}
		r.SkipBits(int(e.nbBits))
		dst[i] = e.symbol
	}
	return nil
}

// DecodeBlock1X decodes a single-stream block produced by EncodeBlock1X (or
// its Repeat variant when a header was emitted) into dst, which must be
// pre-sized to the original (decompressed) length. maxSymbolValue bounds
// the alphabet the caller expects; it is narrowed in place to the header's
// actual highest symbol, mirroring ReadCodeTable.
func DecodeBlock1X(dst, src []byte, maxSymbolValue *int, table *CodeTable) error {
	consumed, err := ReadCodeTable(table, maxSymbolValue, src)
	if err != nil {
		return err
	}
	return decodePayload(dst, src[consumed:], table)
}

// DecodeBlock1XRepeat decodes a single-stream block that reused a
// previously-transmitted table (no header present in src), using table as
// decoded by an earlier DecodeBlock1X/DecodeBlock4X call.
func DecodeBlock1XRepeat(dst, src []byte, table *CodeTable) error {
	return decodePayload(dst, src, table)
}

// DecodeBlock4X is DecodeBlock1X for four-stream blocks produced by
// EncodeBlock4X.
func DecodeBlock4X(dst, src []byte, maxSymbolValue *int, table *CodeTable) error {
	consumed, err := ReadCodeTable(table, maxSymbolValue, src)
	if err != nil {
		return err
	}
	return decodePayload4X(dst, src[consumed:], table)
}

// DecodeBlock4XRepeat is DecodeBlock4X for a block that reused a
// previously-transmitted table.
func DecodeBlock4XRepeat(dst, src []byte, table *CodeTable) error {
	return decodePayload4X(dst, src, table)
}

func decodePayload4X(dst, src []byte, table *CodeTable) error {
	if len(src) < 6 {
		return errf(Corruption, "truncated four-stream prefix")
	}
	l1 := int(src[0]) | int(src[1])<<8
	l2 := int(src[2]) | int(src[3])<<8
	l3 := int(src[4]) | int(src[5])<<8

	body := src[6:]
	if l1+l2+l3 > len(body) {
		return errf(Corruption, "four-stream lengths exceed payload")
	}
	s1 := body[:l1]
	s2 := body[l1 : l1+l2]
	s3 := body[l1+l2 : l1+l2+l3]
	s4 := body[l1+l2+l3:]

	n := len(dst)
	q := n / 4
	bounds := [5]int{0, q, 2 * q, 3 * q, n}
	streams := [4][]byte{s1, s2, s3, s4}

	for i := 0; i < 4; i++ {
		if err := decodePayload(dst[bounds[i]:bounds[i+1]], streams[i], table); err != nil {
			return err
		}
	}
	return nil
}
