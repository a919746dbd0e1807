package graph

import (
	"github.com/go-ragged/ragged/errors"
)

// A Layer holds one Task per partition index under a shared layer name.
// Task i computes the result addressed by Key{Name, i}.
type Layer struct {
	Name  string
	Tasks []*Task
}

// NewLayer creates a Layer from an ordered slice of Tasks
func NewLayer(name string, tasks []*Task) *Layer {
	return &Layer{Name: name, Tasks: tasks}
}

// Keys lists the addressable Keys of this Layer in partition order
func (l *Layer) Keys() []Key {
	keys := make([]Key, len(l.Tasks))
	for i := range l.Tasks {
		keys[i] = Key{Name: l.Name, Index: i}
	}
	return keys
}

// A Graph is a DAG of named Layers with explicit inter-layer dependency
// edges. Layers are never mutated once added; composition happens by adding
// further layers which depend on existing ones.
type Graph struct {
	layers map[string]*Layer
	order  []string
	deps   map[string][]string
}

// NewGraph creates an empty Graph
func NewGraph() *Graph {
	return &Graph{
		layers: make(map[string]*Layer),
		deps:   make(map[string][]string),
	}
}

// FromLayer creates a Graph holding one Layer plus the full contents of any
// dependency Graphs, recording a dependency edge from the new Layer to each
// dependency Graph's layers.
func FromLayer(l *Layer, dependencies ...*Graph) *Graph {
	g := NewGraph()
	var depNames []string
	for _, dep := range dependencies {
		if dep == nil {
			continue
		}
		g.merge(dep)
		depNames = append(depNames, dep.order...)
	}
	g.AddLayer(l, depNames...)
	return g
}

// AddLayer adds a Layer and its dependency edges to this Graph. Adding a
// layer name which already exists is a no-op: layer names are
// content-addressed, so an equal name implies an equal layer.
func (g *Graph) AddLayer(l *Layer, depNames ...string) {
	if _, ok := g.layers[l.Name]; ok {
		return
	}
	g.layers[l.Name] = l
	g.order = append(g.order, l.Name)
	seen := make(map[string]bool)
	var uniq []string
	for _, d := range depNames {
		if d != l.Name && !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}
	g.deps[l.Name] = uniq
}

// merge copies every layer and dependency edge of other into this Graph
func (g *Graph) merge(other *Graph) {
	for _, name := range other.order {
		g.AddLayer(other.layers[name], other.deps[name]...)
	}
}

// Layer retrieves a Layer by name
func (g *Graph) Layer(name string) (*Layer, bool) {
	l, ok := g.layers[name]
	return l, ok
}

// LayerNames lists the layer names of this Graph in insertion order
func (g *Graph) LayerNames() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies lists the layer names a given layer depends on
func (g *Graph) Dependencies(name string) []string {
	out := make([]string, len(g.deps[name]))
	copy(out, g.deps[name])
	return out
}

// Task retrieves the Task addressed by a Key
func (g *Graph) Task(k Key) (*Task, bool) {
	l, ok := g.layers[k.Name]
	if !ok || k.Index < 0 || k.Index >= len(l.Tasks) || l.Tasks[k.Index] == nil {
		return nil, false
	}
	return l.Tasks[k.Index], true
}

// NumTasks counts the Tasks held by this Graph
func (g *Graph) NumTasks() int {
	n := 0
	for _, l := range g.layers {
		for _, t := range l.Tasks {
			if t != nil {
				n++
			}
		}
	}
	return n
}

// Validate checks that every dependency Key referenced by a Task exists
func (g *Graph) Validate() error {
	for _, name := range g.order {
		for _, t := range g.layers[name].Tasks {
			if t == nil {
				continue
			}
			for _, dep := range t.Dependencies() {
				if _, ok := g.Task(dep); !ok {
					return errors.NoSuchKeyError{Key: dep.String()}
				}
			}
		}
	}
	return nil
}
