package huffblock

// assignCanonicalCodes derives canonical codewords from the bit lengths
// left in nodes by buildUnconstrainedTree/limitMaxHeight.
//
// nbPerRank/valPerRank give each length its starting codeword: walking
// ranks from the longest down to 1, valPerRank[k-1] = (valPerRank[k] +
// nbPerRank[k]) >> 1, which carves out contiguous, MSB-aligned codeword
// intervals that satisfy the Kraft equality by construction. Codeword
// values are then handed out walking symbols in ascending symbol order,
// matching HUF_buildCTable_wksp: the canonical code only depends on the
// per-symbol length, not on the tree-builder's sort order, so any fixed
// walk order reproduces the same table deterministically.
func assignCanonicalCodes(nodes []huffNode, nonNullRank, maxSymbolValue int, maxNbBits uint8, table *CodeTable) {
	h := arenaView(nodes)

	var nbPerRank [TableLogMax + 1]uint16
	var valPerRank [TableLogMax + 1]uint16

	for n := 0; n <= nonNullRank; n++ {
		nbPerRank[h(n).nbBits]++
	}

	min := uint16(0)
	for k := int(maxNbBits); k > 0; k-- {
		valPerRank[k] = min
		min += nbPerRank[k]
		min >>= 1
	}

	for n := 0; n <= maxSymbolValue; n++ {
		table.entries[h(n).symbol].NbBits = h(n).nbBits
	}
	for s := 0; s <= maxSymbolValue; s++ {
		l := table.entries[s].NbBits
		table.entries[s].Value = valPerRank[l]
		valPerRank[l]++
	}

	table.maxBits = maxNbBits
}

// buildCodeTable runs components B, C and D in isolation: given symbol
// counts it produces a length-limited canonical CodeTable, returning the
// table's actual maximum codeword length. count[maxSymbolValue+1:] is
// untouched; entries for unused higher symbols are left at NbBits == 0.
//
// count and nodes must come from a Workspace (or be sized identically);
// nodes must have length nodeArenaSize.
func buildCodeTable(nodes []huffNode, count []uint32, maxSymbolValue int, maxNbBits uint8, table *CodeTable) uint8 {
	if maxNbBits == 0 {
		maxNbBits = TableLogDefault
	}

	for i := range nodes {
		nodes[i] = huffNode{}
	}
	*table = CodeTable{}

	nonNullRank, _ := buildUnconstrainedTree(nodes, count, maxSymbolValue)
	actualBits := limitMaxHeight(nodes, nonNullRank, maxNbBits)
	assignCanonicalCodes(nodes, nonNullRank, maxSymbolValue, actualBits, table)
	return actualBits
}
