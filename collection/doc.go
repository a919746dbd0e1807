// Package collection implements Ragged's lazy collection builders and the
// bridges to the adjacent lazy container kinds. Every entry point funnels
// through FromMap: a materialization function plus equal-length input
// iterables become one addressable graph task per partition, with divisions
// and the representative value fixed at construction time. Nothing is
// materialized unless a representative value has to be inferred, in which
// case only the first partition runs, once.
package collection
