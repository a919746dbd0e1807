package collection

import (
	"fmt"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
)

// MapOptions carries the optional parameters of MapPartitions.
type MapOptions struct {
	// Label is the prefix for the result's name; the function's name is
	// used when empty
	Label string
	// Token overrides the content-addressed suffix of the result's name
	Token string
	// Meta is the representative value of the result; the input
	// collection's is reused when absent
	Meta ragged.Array
	// Args are fixed extra arguments appended to every partition call
	Args []any
	// PassIndex appends each partition's index as the call's second
	// argument, after the partition value
	PassIndex bool
}

// MapPartitions applies fn to every partition of a Collection, producing a
// new Collection with the same partitioning. Divisions carry over unchanged;
// the result's representative value must be supplied when fn changes the
// structural type.
func MapPartitions(c ragged.Collection, fn graph.PartitionFn, opts *MapOptions) (ragged.Collection, error) {
	if opts == nil {
		opts = &MapOptions{}
	}
	if fn == nil {
		return nil, errors.NilFuncError{}
	}
	label := opts.Label
	if label == "" {
		label = graph.Funcname(fn)
	}
	token := opts.Token
	if token == "" {
		token = graph.Tokenize(label, c.Name(), graph.Funcname(fn), opts.Args, opts.PassIndex, metaToken(opts.Meta))
	}
	name := fmt.Sprintf("%s-%s", label, token)

	keys := c.Keys()
	tasks := make([]*graph.Task, len(keys))
	for i, k := range keys {
		args := []any{k}
		if opts.PassIndex {
			args = append(args, int64(i))
		}
		args = append(args, opts.Args...)
		tasks[i] = graph.NewTask(fn, args...)
	}
	g := graph.FromLayer(graph.NewLayer(name, tasks), c.Graph())

	meta := opts.Meta
	if meta == nil {
		meta = c.Meta()
	}
	return newArrayObject(g, name, meta, c.Divisions(), c.NPartitions())
}
