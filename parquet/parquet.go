// Package parquet plans lazy Collections over on-disk columnar datasets and
// writes Collections back out, one part file per partition. Planning is a
// metadata-only pass: partition boundaries, the unified schema and row-group
// pruning are all derived from footers without touching data pages, so its
// cost is independent of dataset size.
package parquet

import (
	"github.com/spf13/afero"
)

// FilterOp enumerates the comparison operators usable in a Filter
type FilterOp int

const (
	FilterEq FilterOp = iota // equal
	FilterNe                 // not equal
	FilterLt                 // less than
	FilterLe                 // less than or equal
	FilterGt                 // greater than
	FilterGe                 // greater than or equal
)

// A Filter is a predicate over a top-level numeric column, applied
// conjunctively with any other Filters to prune row groups whose column
// statistics prove that no row can match. Filters never remove individual
// rows, and a row group carrying no statistics for the column is always
// kept.
type Filter struct {
	Column string
	Op     FilterOp
	Value  float64
}

// excludes reports whether a row group whose column spans [min, max] can be
// proven to contain no matching row.
func (f Filter) excludes(min, max float64) bool {
	switch f.Op {
	case FilterEq:
		return f.Value < min || f.Value > max
	case FilterNe:
		return min == f.Value && max == f.Value
	case FilterLt:
		return min >= f.Value
	case FilterLe:
		return min > f.Value
	case FilterGt:
		return max <= f.Value
	case FilterGe:
		return max < f.Value
	}
	return false
}

// Options carries the optional parameters of FromParquet.
type Options struct {
	// Columns restricts every read to the named top-level columns; nil
	// reads all of them
	Columns []string
	// Filters prune row groups by their column statistics
	Filters []Filter
	// SplitRowGroups forces row-group granularity (true) or file
	// granularity (false); nil defers to the dataset layout policy
	SplitRowGroups *bool
	// IgnoreMetadata skips the dataset-level _metadata file even when one
	// is present; nil defaults to true
	IgnoreMetadata *bool
	// ScanFiles opens every file footer during planning, validating that
	// the schemas agree and collecting row-group statistics even without a
	// _metadata file
	ScanFiles bool
	// Fs is the filesystem holding the dataset; the operating system's
	// when nil
	Fs afero.Fs
}

func (o *Options) ignoreMetadata() bool {
	if o.IgnoreMetadata == nil {
		return true
	}
	return *o.IgnoreMetadata
}

// Bool populates the optional boolean fields of Options
func Bool(v bool) *bool {
	return &v
}
