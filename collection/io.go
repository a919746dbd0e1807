package collection

import (
	"context"
	"fmt"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/array"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
)

// FromArray creates a Collection by splitting a concrete array into
// npartitions contiguous row ranges of ceil(len/npartitions) rows, the last
// possibly shorter. Divisions are exact and the representative value derives
// directly from the source, so nothing is ever materialized to plan against
// this collection.
func FromArray(source ragged.Array, npartitions int) (ragged.Collection, error) {
	if npartitions < 1 {
		return nil, errors.InvalidPartitionCountError{N: npartitions}
	}
	if source.IsTypetracer() {
		return nil, errors.MetadataUnavailableError{Op: "partitioning a representative value"}
	}
	nrows := source.Len()
	if nrows == 0 {
		return nil, errors.EmptyInputsError{}
	}
	chunksize := (nrows + npartitions - 1) / npartitions
	locs := []int64{0}
	for start := chunksize; start < nrows; start += chunksize {
		locs = append(locs, int64(start))
	}
	locs = append(locs, int64(nrows))

	starts := make([]any, len(locs)-1)
	stops := make([]any, len(locs)-1)
	for i := range starts {
		starts[i] = locs[i]
		stops[i] = locs[i+1]
	}
	sliceFn := func(ctx context.Context, args ...any) (any, error) {
		return source.Slice(int(args[0].(int64)), int(args[1].(int64)))
	}
	return FromMap(sliceFn, [][]any{starts, stops}, &FromMapOptions{
		Label:     "from-array",
		Token:     graph.Tokenize("from-array", source.Form().String(), array.ToAny(source), npartitions),
		Divisions: locs,
		Meta:      source.Typetracer(),
	})
}

// FromLists creates a Collection from nested Go lists, one partition per
// outer list. Divisions are the cumulative list lengths and the
// representative value derives from the first list's conversion.
func FromLists(source [][]any) (ragged.Collection, error) {
	if len(source) == 0 {
		return nil, errors.EmptyInputsError{}
	}
	first, err := array.FromAny(source[0])
	if err != nil {
		return nil, err
	}
	items := make([]any, len(source))
	divisions := make([]int64, len(source)+1)
	for i, rows := range source {
		items[i] = rows
		divisions[i+1] = divisions[i] + int64(len(rows))
	}
	buildFn := func(ctx context.Context, args ...any) (any, error) {
		return array.FromAny(args[0])
	}
	return FromMap(buildFn, [][]any{items}, &FromMapOptions{
		Label:     "from-lists",
		Token:     graph.Tokenize("from-lists", source),
		Divisions: divisions,
		Meta:      first.Typetracer(),
	})
}

// FromDelayedOptions carries the optional parameters of FromDelayed.
type FromDelayedOptions struct {
	// Meta is the representative value, when known; the first handle is
	// computed once to infer it when absent
	Meta ragged.Array
	// Divisions are the partition row boundaries, when known
	Divisions []int64
	// Label is the prefix for the collection name
	Label string
	// NoEagerMeta disables first-partition schema inference
	NoEagerMeta bool
}

// FromDelayed creates a Collection from independent deferred handles, one
// partition per handle. Divisions are known only when the caller supplies
// them.
func FromDelayed(source []graph.Delayed, opts *FromDelayedOptions) (ragged.Collection, error) {
	if opts == nil {
		opts = &FromDelayedOptions{}
	}
	if len(source) == 0 {
		return nil, errors.EmptyInputsError{}
	}
	if opts.Divisions != nil && len(opts.Divisions) != len(source)+1 {
		return nil, errors.DivisionsLengthError{NPartitions: len(source), Got: len(opts.Divisions)}
	}
	label := opts.Label
	if label == "" {
		label = "from-delayed"
	}
	keys := make([]any, len(source))
	tasks := make([]*graph.Task, len(source))
	deps := make([]*graph.Graph, len(source))
	for i, d := range source {
		keys[i] = d.Key
		tasks[i] = graph.Alias(d.Key)
		deps[i] = d.Graph
	}
	collName := fmt.Sprintf("%s-%s", label, graph.Tokenize(label, keys))
	g := graph.FromLayer(graph.NewLayer(collName, tasks), deps...)

	meta := opts.Meta
	if meta == nil && !opts.NoEagerMeta {
		meta = inferMeta(g, collName)
	}
	return newArrayObject(g, collName, meta, opts.Divisions, len(source))
}

// ToDelayed converts a Collection to one deferred handle per partition.
// Producing the handles never triggers execution. When optimize is true the
// backing graph is pruned to the partition keys first.
func ToDelayed(c ragged.Collection, optimize bool) []graph.Delayed {
	keys := c.Keys()
	g := c.Graph()
	if optimize {
		g = graph.Optimize(g, keys)
	}
	out := make([]graph.Delayed, len(keys))
	for i, k := range keys {
		out[i] = graph.Delayed{Key: k, Graph: g}
	}
	return out
}

// Compute materializes every partition of a Collection and concatenates the
// results, in partition index order.
func Compute(ctx context.Context, c ragged.Collection) (ragged.Array, error) {
	res, err := graph.Execute(ctx, c.Graph(), c.Keys())
	if err != nil {
		return nil, err
	}
	parts := make([]ragged.Array, len(res))
	for i, r := range res {
		arr, ok := r.(ragged.Array)
		if !ok {
			return nil, errors.HeterogeneousListError{Detail: fmt.Sprintf("partition %d produced %T, not an array", i, r)}
		}
		parts[i] = arr
	}
	return array.Concat(parts...)
}
