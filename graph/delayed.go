package graph

import (
	"context"
	"fmt"
)

// A Delayed is a single deferred result: one addressable Key plus the Graph
// needed to produce it. Creating or passing around a Delayed never triggers
// execution.
type Delayed struct {
	Key   Key
	Graph *Graph
}

// NewDelayed wraps a single Task as a Delayed handle. The handle's name is
// content-addressed from the label and the task's identity.
func NewDelayed(label string, t *Task) Delayed {
	name := fmt.Sprintf("%s-%s", label, Tokenize(t.tokenParts()...))
	g := FromLayer(NewLayer(name, []*Task{t}))
	return Delayed{Key: Key{Name: name, Index: 0}, Graph: g}
}

// DelayedValue wraps a concrete value as a Delayed handle
func DelayedValue(label string, v any) Delayed {
	return NewDelayed(label, Literal(v))
}

// Compute triggers execution of this Delayed's graph and returns its result
func (d Delayed) Compute(ctx context.Context) (any, error) {
	res, err := Execute(ctx, d.Graph, []Key{d.Key})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}
