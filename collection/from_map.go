package collection

import (
	"context"
	"fmt"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
	"github.com/go-ragged/ragged/logging"
)

// FromMapOptions carries the optional parameters of FromMap.
type FromMapOptions struct {
	// Args are fixed extra arguments appended to every partition call
	Args []any
	// Label is the human-readable prefix of the collection name; the
	// function's name is used when empty
	Label string
	// Token overrides the content-addressed suffix of the collection name
	Token string
	// Divisions are the partition row boundaries, when known. Must have
	// length len(inputs)+1.
	Divisions []int64
	// Meta is the representative value, when known
	Meta ragged.Array
	// ProducesTasks declares that input items are pre-built *graph.Task
	// descriptors rather than plain values
	ProducesTasks bool
	// NoEagerMeta disables inferring an unknown Meta by computing the
	// first partition once
	NoEagerMeta bool
}

// packedCallable wraps a materialization function so packed argument tuples
// can be unrolled before the call, and fixed extra arguments appended.
type packedCallable struct {
	fn     graph.PartitionFn
	args   []any
	packed bool
}

func (p *packedCallable) call(ctx context.Context, args ...any) (any, error) {
	item := args[0]
	var callArgs []any
	if p.packed {
		callArgs = append(callArgs, item.([]any)...)
	} else {
		callArgs = append(callArgs, item)
	}
	callArgs = append(callArgs, p.args...)
	return p.fn(ctx, callArgs...)
}

// FromMap creates a Collection from a materialization function and one or
// more equal-length input iterables, one partition per position. With a
// single iterable each partition computes fn(item); with several, the i-th
// items of every iterable are zipped positionally into one call. All
// configuration errors surface here, before any graph node exists.
func FromMap(fn graph.PartitionFn, inputs [][]any, opts *FromMapOptions) (ragged.Collection, error) {
	if opts == nil {
		opts = &FromMapOptions{}
	}
	if fn == nil {
		return nil, errors.NilFuncError{}
	}
	if len(inputs) == 0 {
		return nil, errors.NoInputsError{}
	}
	lengths := make(map[int]bool)
	all := make([]int, len(inputs))
	for i, in := range inputs {
		lengths[len(in)] = true
		all[i] = len(in)
	}
	if len(lengths) > 1 {
		return nil, errors.UnevenInputsError{Lengths: all}
	}
	if lengths[0] {
		return nil, errors.EmptyInputsError{}
	}
	if opts.ProducesTasks && len(inputs) > 1 {
		return nil, errors.PackedTasksError{}
	}

	// pair the i-th items of every iterable unless a single iterable (or
	// pre-built task descriptors, which must stay unwrapped) is supplied
	var items []any
	packed := false
	if opts.ProducesTasks || len(inputs) == 1 {
		items = inputs[0]
	} else {
		packed = true
		items = make([]any, len(inputs[0]))
		for i := range inputs[0] {
			tuple := make([]any, len(inputs))
			for j := range inputs {
				tuple[j] = inputs[j][i]
			}
			items[i] = tuple
		}
	}
	n := len(items)

	if opts.Divisions != nil && len(opts.Divisions) != n+1 {
		return nil, errors.DivisionsLengthError{NPartitions: n, Got: len(opts.Divisions)}
	}

	label := opts.Label
	if label == "" {
		label = graph.Funcname(fn)
	}
	token := opts.Token
	if token == "" {
		token = graph.Tokenize(graph.Funcname(fn), inputs, metaToken(opts.Meta), opts.Args, opts.ProducesTasks)
	}
	name := fmt.Sprintf("%s-%s", label, token)

	ioFn := &packedCallable{fn: fn, args: opts.Args, packed: packed}
	tasks := make([]*graph.Task, n)
	for i := range items {
		tasks[i] = graph.NewTask(ioFn.call, items[i])
	}
	g := graph.FromLayer(graph.NewLayer(name, tasks))

	meta := opts.Meta
	if meta == nil && !opts.NoEagerMeta {
		meta = inferMeta(g, name)
	}
	return newArrayObject(g, name, meta, opts.Divisions, n)
}

// inferMeta computes the first partition once and converts the result to its
// representative value. A failure here leaves the schema unknown rather than
// failing construction; type-dependent operations will reject the collection
// later with a metadata-unavailable error.
func inferMeta(g *graph.Graph, name string) ragged.Array {
	res, err := graph.Execute(context.Background(), g, []graph.Key{{Name: name, Index: 0}})
	if err != nil {
		logging.Logger().Debugf("schema inference for %s failed: %v", name, err)
		return nil
	}
	if arr, ok := res[0].(ragged.Array); ok {
		return arr.Typetracer()
	}
	logging.Logger().Debugf("schema inference for %s produced %T, not an array", name, res[0])
	return nil
}

func metaToken(meta ragged.Array) string {
	if meta == nil {
		return ""
	}
	return meta.Form().String()
}
