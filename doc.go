// Package ragged contains the core components of Ragged, a library for building
// lazy, partitioned collections of nested, variable-length array data. This root
// package defines the structural type system (Forms), the nested-array value
// capability (Array) and the lazy Collection contract, and is an excellent
// overview of Ragged's key concepts. Implementations live in the subpackages:
// concrete and representative arrays in array, graph construction and local
// execution in graph, collection builders and bridges in collection, and the
// columnar planner/writer in parquet.
package ragged
