package huffblock

// EncodeBlock1X encodes src into a single bitstream: header followed by one
// sequential, MSB-first-packed payload. It returns the number of bytes
// written to dst, or one of two sentinel values: 0 means the block wasn't
// compressible (store it raw), 1 means dst[0] holds the sole repeated
// symbol (RLE). A real compressed block is always >= 2 bytes, so callers
// must branch on these sentinels before trusting the return value as a
// byte count.
func EncodeBlock1X(dst, src []byte, maxSymbolValue int, huffLog uint8, ws *Workspace) (int, error) {
	return encodeBlock(dst, src, maxSymbolValue, huffLog, ws, true, nil, nil, false)
}

// EncodeBlock4X is EncodeBlock1X but splits the payload into four
// independently decodable streams, letting a decoder process them in
// parallel.
func EncodeBlock4X(dst, src []byte, maxSymbolValue int, huffLog uint8, ws *Workspace) (int, error) {
	return encodeBlock(dst, src, maxSymbolValue, huffLog, ws, false, nil, nil, false)
}

// EncodeBlock1XRepeat is EncodeBlock1X with table-reuse support:
// oldTable/state are shared across a sequence of blocks, letting later
// blocks skip re-emitting an identical header when doing so is cheaper.
func EncodeBlock1XRepeat(dst, src []byte, maxSymbolValue int, huffLog uint8, ws *Workspace, oldTable *CodeTable, state *RepeatState, preferRepeat bool) (int, error) {
	return encodeBlock(dst, src, maxSymbolValue, huffLog, ws, true, oldTable, state, preferRepeat)
}

// EncodeBlock4XRepeat is EncodeBlock4X with table-reuse support.
func EncodeBlock4XRepeat(dst, src []byte, maxSymbolValue int, huffLog uint8, ws *Workspace, oldTable *CodeTable, state *RepeatState, preferRepeat bool) (int, error) {
	return encodeBlock(dst, src, maxSymbolValue, huffLog, ws, false, oldTable, state, preferRepeat)
}

func encodeBlock(dst, src []byte, maxSymbolValue int, huffLog uint8, ws *Workspace, singleStream bool, oldTable *CodeTable, state *RepeatState, preferRepeat bool) (int, error) {
	if len(src) > BlockSizeMax {
		return 0, errf(SrcSizeWrong, "src length %d exceeds BlockSizeMax %d", len(src), BlockSizeMax)
	}
	if len(src) == 0 {
		return 0, nil
	}
	if huffLog > TableLogMax {
		return 0, errf(TableLogTooLarge, "huffLog %d exceeds %d", huffLog, TableLogMax)
	}
	if maxSymbolValue <= 0 || maxSymbolValue > SymbolMax {
		maxSymbolValue = SymbolMax
	}
	if huffLog == 0 {
		huffLog = TableLogDefault
	}
	if ws == nil {
		ws = NewWorkspace()
	}

	// Row 1 of the RepeatPolicy table: skip the histogram entirely.
	if oldTable != nil && state != nil && preferOldTableEarly(*state, preferRepeat) {
		return finishWithTable(dst, src, oldTable, singleStream, nil)
	}

	ws.reset()
	res := histogram(ws.count[:], src, &maxSymbolValue)
	if res.rle {
		if len(dst) < 1 {
			return 0, errf(DstSizeTooSmall, "need 1 byte for RLE block")
		}
		dst[0] = res.rleSymbol
		return 1, nil
	}
	if res.tooFlat {
		return 0, nil
	}

	if oldTable != nil && state != nil {
		validateOldTable(state, oldTable, ws.count[:], maxSymbolValue)
		if preferRepeat && *state != RepeatNone {
			return finishWithTable(dst, src, oldTable, singleStream, nil)
		}
	}

	huffLog = tableLogForInput(huffLog, len(src), maxSymbolValue)
	actualBits := buildCodeTable(ws.nodes[:], ws.count[:maxSymbolValue+1], maxSymbolValue, huffLog, &ws.table)

	var headerBuf [2 + symbolCount]byte
	hSize, err := WriteCodeTable(headerBuf[:], &ws.table, maxSymbolValue, actualBits)
	if err != nil {
		return 0, err
	}

	if oldTable != nil && state != nil && *state != RepeatNone {
		if preferOldTableAfterBuild(oldTable, &ws.table, ws.count[:], maxSymbolValue, hSize, len(src)) {
			return finishWithTable(dst, src, oldTable, singleStream, nil)
		}
	}

	if hSize+repeatMargin >= len(src) {
		return 0, nil
	}

	// From here the new table becomes the block's table of record even
	// if the payload turns out incompressible below: a later block's
	// repeat decision should compare against this table, not a stale
	// one, matching HUF_compress_internal's ordering.
	if state != nil {
		*state = RepeatNone
	}
	if oldTable != nil {
		*oldTable = ws.table.clone()
	}

	return finishWithTable(dst, src, &ws.table, singleStream, headerBuf[:hSize])
}

// finishWithTable assembles header (if non-nil) followed by the payload
// bitstream(s) into a scratch buffer, applies the final
// incompressibility check (if the total output is no smaller than
// srcSize-1, the caller should store the block raw), and only then copies
// the result into dst.
func finishWithTable(dst, src []byte, table *CodeTable, singleStream bool, header []byte) (int, error) {
	var payload []byte
	var err error
	if singleStream {
		payload, err = encodePayload1X(src, table)
	} else {
		payload, err = encodePayload4X(src, table)
	}
	if err != nil {
		return 0, err
	}

	total := len(header) + len(payload)
	if total >= len(src)-1 {
		return 0, nil
	}
	if len(dst) < total {
		return 0, errf(DstSizeTooSmall, "need %d bytes, dst has %d", total, len(dst))
	}

	n := copy(dst, header)
	copy(dst[n:], payload)
	return total, nil
}

// encodePayload1X packs src sequentially, MSB-first, into one bitstream.
func encodePayload1X(src []byte, table *CodeTable) ([]byte, error) {
	w := NewBitWriter(make([]byte, 0, len(src)))
	for _, b := range src {
		e := table.entries[b]
		if e.NbBits == 0 {
			return nil, errf(Corruption, "symbol %d has no codeword", b)
		}
		w.AddBits(uint32(e.Value), int(e.NbBits))
	}
	return w.Finalize(), nil
}

// encodePayload4X splits src into four contiguous quarters (the last
// slightly longer by len(src) mod 4), encodes each independently, and
// prepends three 16-bit little-endian lengths for streams 1-3; stream 4's
// length is implied by what remains.
func encodePayload4X(src []byte, table *CodeTable) ([]byte, error) {
	n := len(src)
	q := n / 4
	bounds := [5]int{0, q, 2 * q, 3 * q, n}

	out := make([]byte, 6, 6+n)

	var lens [3]int
	for i := 0; i < 4; i++ {
		part := src[bounds[i]:bounds[i+1]]
		w := NewBitWriter(make([]byte, 0, len(part)))
		for _, b := range part {
			e := table.entries[b]
			if e.NbBits == 0 {
				return nil, errf(Corruption, "symbol %d has no codeword", b)
			}
			w.AddBits(uint32(e.Value), int(e.NbBits))
		}
		enc := w.Finalize()
		out = append(out, enc...)
		if i < 3 {
			lens[i] = len(enc)
			if lens[i] > 0xFFFF {
				return nil, errf(Generic, "stream %d exceeds 16-bit length field", i+1)
			}
		}
	}

	out[0] = byte(lens[0])
	out[1] = byte(lens[0] >> 8)
	out[2] = byte(lens[1])
	out[3] = byte(lens[1] >> 8)
	out[4] = byte(lens[2])
	out[5] = byte(lens[2] >> 8)

	return out, nil
}
