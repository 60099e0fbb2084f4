package huffblock

import "math/bits"

// huffNode is one entry of the tree-builder's arena. Leaves occupy indices
// [0, maxSymbolValue]; internal nodes are appended starting at
// maxSymbolValue+1. parent is itself an arena index, so the whole tree is a
// flat array with no pointers.
type huffNode struct {
	count  uint32
	parent uint16
	symbol byte
	nbBits uint8
}

// highBit32 returns floor(log2(x)) for x >= 1.
func highBit32(x uint32) uint32 {
	return uint32(bits.Len32(x) - 1)
}

// sortHuffmanNodes bucket-sorts symbols [0, maxSymbolValue] into nodes (via
// the h accessor) in decreasing count order, breaking ties by ascending
// symbol index. It uses 32 buckets keyed by floor(log2(count+1)) followed by
// an insertion-sort pass within each bucket, mirroring HUF_sort: the
// counting pass and the placement pass intentionally use rank indices that
// differ by one, which is load-bearing for where the insertion window
// starts.
func sortHuffmanNodes(h func(int) *huffNode, count []uint32, maxSymbolValue int) {
	var rankBase, rankCurrent [32]uint32

	for n := 0; n <= maxSymbolValue; n++ {
		r := highBit32(count[n] + 1)
		rankBase[r]++
	}
	for n := 30; n > 0; n-- {
		rankBase[n-1] += rankBase[n]
	}
	rankCurrent = rankBase

	for n := 0; n <= maxSymbolValue; n++ {
		c := count[n]
		r := highBit32(c+1) + 1
		pos := int(rankCurrent[r])
		rankCurrent[r]++
		for pos > int(rankBase[r]) && c > h(pos-1).count {
			*h(pos) = *h(pos - 1)
			pos--
		}
		h(pos).count = c
		h(pos).symbol = byte(n)
	}
}

// arenaView gives index-shifted access into the node arena so that index -1
// reaches the sentinel slot at nodes[0], matching the original's
// huffNode = huffNode0 + 1 layout.
func arenaView(nodes []huffNode) func(int) *huffNode {
	return func(i int) *huffNode { return &nodes[i+1] }
}

// buildUnconstrainedTree runs the classic two-queue Huffman merge over a
// pre-sorted node arena and assigns unconstrained bit lengths
// by a single pass from the root outward. It returns the index of the last
// (highest-index, smallest-count) non-empty leaf and the root's arena
// index, both needed by the depth limiter and canonicalizer.
func buildUnconstrainedTree(nodes []huffNode, count []uint32, maxSymbolValue int) (nonNullRank, nodeRoot int) {
	h := arenaView(nodes)

	sortHuffmanNodes(h, count, maxSymbolValue)

	nonNullRank = maxSymbolValue
	for h(nonNullRank).count == 0 {
		nonNullRank--
	}

	startNode := maxSymbolValue + 1
	lowS := nonNullRank
	nodeRoot = startNode + lowS - 1
	lowN := startNode
	nodeNb := startNode

	h(nodeNb).count = h(lowS).count + h(lowS-1).count
	h(lowS).parent = uint16(nodeNb)
	h(lowS - 1).parent = uint16(nodeNb)
	nodeNb++
	lowS -= 2

	for n := nodeNb; n <= nodeRoot; n++ {
		h(n).count = 1 << 30
	}
	h(-1).count = 1 << 31 // sentinel: strong barrier terminating the scan

	for nodeNb <= nodeRoot {
		var n1, n2 int
		if h(lowS).count < h(lowN).count {
			n1, lowS = lowS, lowS-1
		} else {
			n1, lowN = lowN, lowN+1
		}
		if h(lowS).count < h(lowN).count {
			n2, lowS = lowS, lowS-1
		} else {
			n2, lowN = lowN, lowN+1
		}
		h(nodeNb).count = h(n1).count + h(n2).count
		h(n1).parent = uint16(nodeNb)
		h(n2).parent = uint16(nodeNb)
		nodeNb++
	}

	h(nodeRoot).nbBits = 0
	for n := nodeRoot - 1; n >= startNode; n-- {
		h(n).nbBits = h(int(h(n).parent)).nbBits + 1
	}
	for n := 0; n <= nonNullRank; n++ {
		h(n).nbBits = h(int(h(n).parent)).nbBits + 1
	}

	return nonNullRank, nodeRoot
}

// tableLogForInput adjusts the requested table log (0 meaning
// TableLogDefault), approximating HUF_optimalTableLog: large enough to
// distinguish the alphabet, small enough that the header doesn't dominate a
// short block, never above TableLogMax.
func tableLogForInput(requested uint8, srcSize, maxSymbolValue int) uint8 {
	if requested == 0 {
		requested = TableLogDefault
	}
	if requested > TableLogMax {
		requested = TableLogMax
	}

	minLog := uint8(bits.Len(uint(maxSymbolValue)))
	if minLog < 1 {
		minLog = 1
	}
	srcLog := uint8(bits.Len(uint(srcSize)))

	log := requested
	if log > srcLog && srcLog >= minLog {
		log = srcLog
	}
	if log < minLog {
		log = minLog
	}
	if log > TableLogMax {
		log = TableLogMax
	}
	return log
}
