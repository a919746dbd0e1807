// Package array implements Ragged's nested array values: concrete arrays
// carrying leaf, list-offset and record layouts, and representative
// (typetracer) arrays carrying only a Form. Representatives cost nothing to
// build, and every structural operation on them succeeds and propagates the
// Form the same operation on concrete data would produce, which is what lets
// collections report their schema before any partition is materialized. The
// package also provides the Arrow interop used by the columnar planner and
// writer.
package array
