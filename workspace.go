package huffblock

// nodeArenaSize is the size of the tree-builder's node arena: 2*N+1 nodes
// for an N-symbol alphabet, N = symbolCount.
const nodeArenaSize = 2*symbolCount + 1

// WorkspaceMinSize is the scratch budget, in bytes, for the node arena, the
// count table and the code table: sizeof(nodeArray) + 1024 + 1024.
// Workspace is a fixed-size struct and takes no caller-supplied buffer, so
// no operation in this package checks a size against this value.
const WorkspaceMinSize = nodeArenaSize*20 + 1024 + 1024

// Workspace holds the scratch storage used during a single encode call: the
// symbol histogram, the Huffman node arena, and the resulting CodeTable,
// each in its own array. The payload bitstreams are not built here: each
// encode call allocates fresh buffers for them and copies the result into
// dst.
//
// A Workspace is not safe for concurrent use; two goroutines encoding
// concurrently must each own a distinct Workspace.
type Workspace struct {
	count [symbolCount]uint32
	nodes [nodeArenaSize]huffNode
	table CodeTable
}

// NewWorkspace allocates a ready-to-use Workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

func (w *Workspace) reset() {
	for i := range w.count {
		w.count[i] = 0
	}
}
