package ragged

import (
	"github.com/go-ragged/ragged/graph"
)

// A Collection is an ordered, lazy sequence of partitions of nested array
// data. Nothing is read or computed while a Collection is constructed or
// chained: each partition is an addressable task in the Collection's Graph,
// and an external scheduler (or graph.Execute) materializes partitions on
// demand. Partition count, divisions and the representative value are fixed
// at construction time and never change afterwards.
type Collection interface {
	Name() string        // Name retrieves the content-addressed identity of this Collection
	NPartitions() int    // NPartitions retrieves the number of partitions in this Collection
	Divisions() []int64  // Divisions retrieves the N+1 cumulative row offsets delimiting partitions, or nil when unknown
	KnownDivisions() bool // KnownDivisions returns true iff partition row boundaries are known exactly
	Meta() Array         // Meta retrieves the representative value shared by every partition, or nil when unknown
	Graph() *graph.Graph // Graph retrieves the task graph backing this Collection
	Keys() []graph.Key   // Keys retrieves the addressable partition keys of this Collection, in partition order
	Partitions(indices ...int) (Collection, error) // Partitions selects a subset of partitions as a new Collection
	String() string      // String produces a string representation of this Collection for logging
}
