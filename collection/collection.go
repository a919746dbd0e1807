package collection

import (
	"fmt"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
)

// arrayCollection implements ragged.Collection. All fields are fixed at
// construction and never mutated, so a collection is safe to share across
// goroutines.
type arrayCollection struct {
	name        string
	g           *graph.Graph
	npartitions int
	divisions   []int64
	meta        ragged.Array
}

var _ ragged.Collection = (*arrayCollection)(nil)

// newArrayObject assembles a Collection from a graph and the metadata fixed
// at construction. When divisions are supplied they determine the partition
// count; otherwise npartitions stands alone and boundaries stay unknown.
func newArrayObject(g *graph.Graph, name string, meta ragged.Array, divisions []int64, npartitions int) (ragged.Collection, error) {
	if divisions != nil {
		npartitions = len(divisions) - 1
	}
	return &arrayCollection{
		name:        name,
		g:           g,
		npartitions: npartitions,
		divisions:   divisions,
		meta:        meta,
	}, nil
}

// Name retrieves the content-addressed identity of this Collection
func (c *arrayCollection) Name() string {
	return c.name
}

// NPartitions retrieves the number of partitions in this Collection
func (c *arrayCollection) NPartitions() int {
	return c.npartitions
}

// Divisions retrieves the N+1 cumulative row offsets delimiting partitions,
// or nil when unknown. Divisions are either fully known or fully unknown.
func (c *arrayCollection) Divisions() []int64 {
	if c.divisions == nil {
		return nil
	}
	return append([]int64(nil), c.divisions...)
}

// KnownDivisions returns true iff partition row boundaries are known exactly
func (c *arrayCollection) KnownDivisions() bool {
	return c.divisions != nil
}

// Meta retrieves the representative value shared by every partition, or nil
// when the schema is unknown
func (c *arrayCollection) Meta() ragged.Array {
	return c.meta
}

// Graph retrieves the task graph backing this Collection
func (c *arrayCollection) Graph() *graph.Graph {
	return c.g
}

// Keys retrieves the addressable partition keys of this Collection
func (c *arrayCollection) Keys() []graph.Key {
	keys := make([]graph.Key, c.npartitions)
	for i := range keys {
		keys[i] = graph.Key{Name: c.name, Index: i}
	}
	return keys
}

// Partitions selects a subset of partitions as a new Collection. Indices
// keep their given order; divisions are rebased from the selected partition
// widths when known.
func (c *arrayCollection) Partitions(indices ...int) (ragged.Collection, error) {
	if len(indices) == 0 {
		return nil, errors.EmptyInputsError{}
	}
	tasks := make([]*graph.Task, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= c.npartitions {
			return nil, errors.NoSuchKeyError{Key: graph.Key{Name: c.name, Index: idx}.String()}
		}
		tasks[i] = graph.Alias(graph.Key{Name: c.name, Index: idx})
	}
	name := fmt.Sprintf("partitions-%s", graph.Tokenize(c.name, indices))
	g := graph.FromLayer(graph.NewLayer(name, tasks), c.g)

	var divisions []int64
	if c.divisions != nil {
		divisions = make([]int64, len(indices)+1)
		for i, idx := range indices {
			divisions[i+1] = divisions[i] + (c.divisions[idx+1] - c.divisions[idx])
		}
	}
	return newArrayObject(g, name, c.meta, divisions, len(indices))
}

// String produces a string representation of this Collection for logging
func (c *arrayCollection) String() string {
	return fmt.Sprintf("ragged.Collection<%s, npartitions=%d>", c.name, c.npartitions)
}
