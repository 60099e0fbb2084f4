// Package huffblock implements the entropy-coding core of a Huffman block
// codec: frequency counting, length-limited canonical Huffman construction,
// header (weight table) serialization, and payload bit packing into one or
// four independently decodable streams.
//
// One call encodes one block of up to BlockSizeMax bytes; there is no
// streaming or adaptive mode. Callers that need to compress a larger input
// are expected to split it into blocks themselves (see cmd/huffblock for an
// example).
package huffblock

const (
	// SymbolMax is the largest symbol value this codec handles; the
	// alphabet is always a subset of [0, SymbolMax].
	SymbolMax = 255

	// symbolCount is the size of a full alphabet's count/table arrays.
	symbolCount = SymbolMax + 1

	// TableLogMax is the hard ceiling on codeword length.
	TableLogMax = 12

	// TableLogDefault is used when the caller does not request a
	// specific table log.
	TableLogDefault = 11

	// BlockSizeMax bounds the input to a single encode call.
	BlockSizeMax = 128 * 1024

	// secondaryTableLog is the inner table log used by the secondary
	// entropy coder when compressing the weight header.
	secondaryTableLog = 6

	// noSymbol marks an empty rank slot in the depth limiter.
	noSymbol = -1
)

// RepeatState conveys, across successive calls that share an old CodeTable,
// whether that table remains a candidate for reuse.
type RepeatState int

const (
	// RepeatNone means no old table is available or it has been
	// invalidated; a fresh table must be built.
	RepeatNone RepeatState = iota
	// RepeatCheck means an old table exists but must be validated
	// against the new block's counts before it can be reused.
	RepeatCheck
	// RepeatValid means the old table is known good and may be reused
	// outright when preferRepeat is set.
	RepeatValid
)

func (s RepeatState) String() string {
	switch s {
	case RepeatNone:
		return "none"
	case RepeatCheck:
		return "check"
	case RepeatValid:
		return "valid"
	default:
		return "invalid"
	}
}
