package huffblock

import (
	"math/rand"
	"testing"
)

// kraftSum computes Σ 2^(L - nbBits[s]) over symbols with a non-zero count,
// the quantity invariant 1 in the testable-properties list asserts equals
// 2^L for any table this package produces.
func kraftSum(table *CodeTable, maxSymbolValue int, L uint8) uint64 {
	var sum uint64
	for s := 0; s <= maxSymbolValue; s++ {
		nb := table.entries[s].NbBits
		if nb == 0 {
			continue
		}
		sum += uint64(1) << (L - nb)
	}
	return sum
}

func buildTableFromCounts(t *testing.T, count []uint32, maxSymbolValue int, maxNbBits uint8) (*CodeTable, uint8) {
	t.Helper()
	var nodes [nodeArenaSize]huffNode
	var table CodeTable
	actual := buildCodeTable(nodes[:], count, maxSymbolValue, maxNbBits, &table)
	return &table, actual
}

func TestKraftEquality(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		maxSymbolValue := 1 + rng.Intn(255)
		count := make([]uint32, maxSymbolValue+1)
		for i := range count {
			count[i] = uint32(rng.Intn(1000))
		}
		// Guarantee at least two distinct present symbols.
		count[0] = 1
		count[maxSymbolValue] = 1

		table, actual := buildTableFromCounts(t, count, maxSymbolValue, TableLogMax)
		sum := kraftSum(table, maxSymbolValue, actual)
		want := uint64(1) << actual
		if sum != want {
			t.Fatalf("trial %d: kraft sum %d != 2^%d = %d", trial, sum, actual, want)
		}
	}
}

func TestLengthBound(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for _, maxNbBits := range []uint8{4, 8, 11, 12} {
		for trial := 0; trial < 20; trial++ {
			maxSymbolValue := 1 + rng.Intn(255)
			// A prefix code no longer than maxNbBits has room for at most
			// 2^maxNbBits symbols.
			if limit := 1<<maxNbBits - 1; maxSymbolValue > limit {
				maxSymbolValue = limit
			}
			count := make([]uint32, maxSymbolValue+1)
			for i := range count {
				count[i] = uint32(rng.Intn(1 << 20))
			}
			count[0] = 1
			count[maxSymbolValue] = 1

			table, actual := buildTableFromCounts(t, count, maxSymbolValue, maxNbBits)
			if actual > maxNbBits {
				t.Fatalf("actual bits %d exceeds requested %d", actual, maxNbBits)
			}
			for s := 0; s <= maxSymbolValue; s++ {
				if table.entries[s].NbBits > maxNbBits {
					t.Fatalf("symbol %d has nbBits %d > %d", s, table.entries[s].NbBits, maxNbBits)
				}
			}
		}
	}
}

func TestCanonicalStability(t *testing.T) {
	count := make([]uint32, 64)
	rng := rand.New(rand.NewSource(3))
	for i := range count {
		count[i] = uint32(rng.Intn(5000))
	}
	count[0] = 1
	count[63] = 1

	t1, b1 := buildTableFromCounts(t, append([]uint32{}, count...), 63, TableLogMax)
	t2, b2 := buildTableFromCounts(t, append([]uint32{}, count...), 63, TableLogMax)

	if b1 != b2 {
		t.Fatalf("actual bits differ across identical builds: %d vs %d", b1, b2)
	}
	for s := 0; s < 64; s++ {
		e1, e2 := t1.Entry(byte(s)), t2.Entry(byte(s))
		if e1.NbBits != e2.NbBits || e1.Value != e2.Value {
			t.Fatalf("entries differ at symbol %d: %+v vs %+v", s, e1, e2)
		}
	}
}

// DepthLimiterTrigger fills the byte alphabet with 255 symbols of count 1
// plus one symbol with count 2^20. The unconstrained tree for this shape is
// 9 deep (the ones form an 8-deep subtree beside the dominant symbol), so a
// limit of L=8 forces the depth limiter to act.
func TestDepthLimiterTrigger(t *testing.T) {
	const maxSymbolValue = SymbolMax
	const limit = 8
	count := make([]uint32, maxSymbolValue+1)
	for i := range count {
		count[i] = 1
	}
	count[maxSymbolValue] = 1 << 20

	table, actual := buildTableFromCounts(t, count, maxSymbolValue, limit)
	if actual > limit {
		t.Fatalf("actual bits %d exceeds requested %d", actual, limit)
	}
	sum := kraftSum(table, maxSymbolValue, actual)
	if sum != uint64(1)<<actual {
		t.Fatalf("kraft sum %d != 2^%d", sum, actual)
	}
}
