package graph

import (
	"github.com/go-ragged/ragged/logging"
)

// Optimize returns a Graph containing only the tasks reachable from the
// wanted Keys. Layers left with no reachable tasks are dropped entirely;
// partially-needed layers keep their length so Key indices stay stable, with
// unreachable slots emptied. The input Graph is never modified.
func Optimize(g *Graph, wanted []Key) *Graph {
	reachable := make(map[Key]bool)
	stack := append([]Key(nil), wanted...)
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[k] {
			continue
		}
		reachable[k] = true
		if t, ok := g.Task(k); ok {
			stack = append(stack, t.Dependencies()...)
		}
	}

	out := NewGraph()
	kept := make(map[string]bool)
	for _, name := range g.order {
		l := g.layers[name]
		tasks := make([]*Task, len(l.Tasks))
		keep := false
		for i, t := range l.Tasks {
			if t != nil && reachable[Key{Name: name, Index: i}] {
				tasks[i] = t
				keep = true
			}
		}
		if !keep {
			continue
		}
		kept[name] = true
		var deps []string
		for _, d := range g.deps[name] {
			if kept[d] {
				deps = append(deps, d)
			}
		}
		out.AddLayer(NewLayer(name, tasks), deps...)
	}
	logging.Logger().Debugf("optimized graph from %d to %d tasks", g.NumTasks(), out.NumTasks())
	return out
}
