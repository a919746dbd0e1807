// Package chunked implements the rectangular numeric collection kind adjacent
// to Ragged collections: a lazy N-dimensional numeric array split into blocks
// along its axes, with a single primitive dtype and per-axis chunk sizes which
// may be unknown ahead of execution. Chunk payloads are flat Arrow arrays.
package chunked

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"

	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
)

// UnknownChunkSize marks a chunk whose row count is not known until the chunk
// is materialized.
const UnknownChunkSize int64 = -1

// Array is a lazy rectangular numeric collection. Axis 0 is the partition
// axis: one graph task per block along it.
type Array struct {
	name   string
	g      *graph.Graph
	chunks [][]int64
	dtype  arrow.DataType
}

// New creates a chunked Array from a graph layer name, its backing graph,
// per-axis chunk sizes and an element dtype
func New(name string, g *graph.Graph, chunks [][]int64, dtype arrow.DataType) *Array {
	return &Array{name: name, g: g, chunks: chunks, dtype: dtype}
}

// Name retrieves the content-addressed identity of this Array
func (x *Array) Name() string {
	return x.name
}

// Graph retrieves the task graph backing this Array
func (x *Array) Graph() *graph.Graph {
	return x.g
}

// NDim retrieves the number of axes of this Array
func (x *Array) NDim() int {
	return len(x.chunks)
}

// NumBlocks retrieves the number of blocks along the partition axis
func (x *Array) NumBlocks() int {
	return len(x.chunks[0])
}

// Chunks retrieves the per-axis chunk sizes, UnknownChunkSize where unknown
func (x *Array) Chunks() [][]int64 {
	return x.chunks
}

// Dtype retrieves the element type of this Array
func (x *Array) Dtype() arrow.DataType {
	return x.dtype
}

// KnownChunks returns true iff every chunk size along every axis is known
func (x *Array) KnownChunks() bool {
	for _, axis := range x.chunks {
		for _, c := range axis {
			if c == UnknownChunkSize {
				return false
			}
		}
	}
	return true
}

// Keys retrieves the addressable block keys along the partition axis
func (x *Array) Keys() []graph.Key {
	keys := make([]graph.Key, x.NumBlocks())
	for i := range keys {
		keys[i] = graph.Key{Name: x.name, Index: i}
	}
	return keys
}

// String produces a string representation of this Array for logging
func (x *Array) String() string {
	return fmt.Sprintf("<chunked.Array %s ndim=%d nblocks=%d dtype=%s>", x.name, x.NDim(), x.NumBlocks(), x.dtype)
}

// FromArrays wraps concrete Arrow arrays as a 1-D chunked Array with one
// literal block per input and fully known chunk sizes.
func FromArrays(label string, arrs []arrow.Array) (*Array, error) {
	if len(arrs) == 0 {
		return nil, errors.EmptyInputsError{}
	}
	sizes := make([]int64, len(arrs))
	tasks := make([]*graph.Task, len(arrs))
	tokens := make([]any, 0, len(arrs)+1)
	tokens = append(tokens, label)
	for i, a := range arrs {
		sizes[i] = int64(a.Len())
		tasks[i] = graph.Literal(a)
		tokens = append(tokens, a.DataType().String(), a.Len())
	}
	name := fmt.Sprintf("%s-%s", label, graph.Tokenize(tokens...))
	g := graph.FromLayer(graph.NewLayer(name, tasks))
	return New(name, g, [][]int64{sizes}, arrs[0].DataType()), nil
}
