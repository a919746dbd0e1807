package collection

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/array"
	"github.com/go-ragged/ragged/chunked"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
)

// ToChunked converts a Collection to a rectangular numeric chunked array.
// The collection's representative value must be known and must descend
// through list wrappers to a single numeric leaf. Partition sizes are not
// assumed known ahead of execution, so every chunk along the partition axis
// is unknown-sized; inner axes get one placeholder block each.
func ToChunked(c ragged.Collection) (*chunked.Array, error) {
	meta := c.Meta()
	if meta == nil {
		return nil, errors.MetadataUnavailableError{Op: "conversion to a rectangular numeric collection"}
	}
	dtype, ok := ragged.LeafDType(meta.Form())
	if !ok {
		return nil, errors.NotRectangularError{Form: meta.Form().String()}
	}
	toValues := func(ctx context.Context, args ...any) (any, error) {
		arr, ok := args[0].(ragged.Array)
		if !ok {
			return nil, errors.NotRectangularError{Form: fmt.Sprintf("%T", args[0])}
		}
		flat, err := flattenToLeaf(arr)
		if err != nil {
			return nil, err
		}
		return array.ToArrowValues(flat, memory.DefaultAllocator)
	}
	mapped, err := MapPartitions(c, toValues, &MapOptions{
		Label: "to-chunked",
		Meta:  array.TypetracerFromForm(&ragged.NumericForm{Dtype: dtype}),
	})
	if err != nil {
		return nil, err
	}

	ndim := meta.NDim()
	chunks := make([][]int64, ndim)
	axis0 := make([]int64, c.NPartitions())
	for i := range axis0 {
		axis0[i] = chunked.UnknownChunkSize
	}
	chunks[0] = axis0
	for axis := 1; axis < ndim; axis++ {
		chunks[axis] = []int64{chunked.UnknownChunkSize}
	}
	return chunked.New(mapped.Name(), mapped.Graph(), chunks, array.DTypeToArrow(dtype)), nil
}

// flattenToLeaf strips list nesting from a rectangular array down to its
// numeric leaf rows
func flattenToLeaf(a ragged.Array) (ragged.Array, error) {
	arr := a
	for arr.NDim() > 1 {
		rows := array.ToAny(arr)
		var flat []any
		for _, r := range rows {
			elems, ok := r.([]any)
			if !ok {
				return nil, errors.NotRectangularError{Form: a.Form().String()}
			}
			flat = append(flat, elems...)
		}
		next, err := array.FromAny(flat)
		if err != nil {
			return nil, err
		}
		arr = next
	}
	return arr, nil
}

// FromChunked converts a 1-D rectangular numeric chunked array to a
// Collection, one partition per chunk. Divisions are known exactly when all
// chunk sizes are known. Higher-dimensional sources require block
// concatenation owned by the numeric engine and are rejected.
func FromChunked(x *chunked.Array) (ragged.Collection, error) {
	if x.NDim() != 1 {
		return nil, errors.NotRectangularError{Form: fmt.Sprintf("chunked array of ndim %d", x.NDim())}
	}
	dtype, err := array.ArrowToDType(x.Dtype())
	if err != nil {
		return nil, err
	}
	fromValues := func(ctx context.Context, args ...any) (any, error) {
		vals, ok := args[0].(arrow.Array)
		if !ok {
			return nil, errors.NotRectangularError{Form: fmt.Sprintf("%T", args[0])}
		}
		return array.FromArrowValues(vals)
	}
	name := fmt.Sprintf("from-chunked-%s", graph.Tokenize("from-chunked", x.Name()))
	tasks := make([]*graph.Task, x.NumBlocks())
	for i, k := range x.Keys() {
		tasks[i] = graph.NewTask(fromValues, k)
	}
	g := graph.FromLayer(graph.NewLayer(name, tasks), x.Graph())

	var divisions []int64
	if x.KnownChunks() {
		divisions = make([]int64, x.NumBlocks()+1)
		for i, size := range x.Chunks()[0] {
			divisions[i+1] = divisions[i] + size
		}
	}
	meta := array.TypetracerFromForm(&ragged.NumericForm{Dtype: dtype})
	return newArrayObject(g, name, meta, divisions, x.NumBlocks())
}
