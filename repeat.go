package huffblock

// repeatMargin is the conservative slack HUF_compress_internal adds to the
// header size when deciding whether a new table is worth emitting at all;
// it covers the bitstream's own framing overhead.
const repeatMargin = 12

// preferOldTableEarly implements the first row of the RepeatPolicy decision
// table: when the caller has already vouched for oldTable (RepeatValid) and
// asked to skip validation, BlockEncoder can reuse it without even scanning
// the new block's histogram.
func preferOldTableEarly(state RepeatState, preferRepeat bool) bool {
	return preferRepeat && state == RepeatValid
}

// validateOldTable implements the Check row: an old table carried over from
// a prior block is only a candidate if every symbol present in the new
// block's counts also had a codeword in it. On failure the state collapses
// to RepeatNone so later blocks stop trying to reuse it.
func validateOldTable(state *RepeatState, oldTable *CodeTable, count []uint32, maxSymbolValue int) {
	if *state == RepeatCheck && !oldTable.validate(count, maxSymbolValue) {
		*state = RepeatNone
	}
}

// estimateBytes converts an exact bit estimate to bytes, truncating as the
// original HUF_estimateCompressedSize does.
func estimateBytes(t *CodeTable, count []uint32, maxSymbolValue int) uint64 {
	return t.estimateBits(count, maxSymbolValue) / 8
}

// preferOldTableAfterBuild implements the decision made once a fresh table
// and its header have been built: reuse the old table (discarding the new
// header) when the old table's estimated payload cost is no worse than the
// new header plus the new table's payload cost, or when the new header is
// so large relative to the block that it cannot pay for itself.
func preferOldTableAfterBuild(oldTable, newTable *CodeTable, count []uint32, maxSymbolValue, hSize, srcSize int) bool {
	oldSize := estimateBytes(oldTable, count, maxSymbolValue)
	newSize := estimateBytes(newTable, count, maxSymbolValue)
	return oldSize <= uint64(hSize)+newSize || hSize+repeatMargin >= srcSize
}
