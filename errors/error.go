package errors

import (
	"fmt"
)

// NilFuncError occurs when a Collection is built from a nil materialization function
type NilFuncError struct{}

// Error returns a textual representation of this NilFuncError
func (e NilFuncError) Error() string {
	return "Materialization function must not be nil"
}

// NoInputsError occurs when a Collection is built from zero input iterables
type NoInputsError struct{}

// Error returns a textual representation of this NoInputsError
func (e NoInputsError) Error() string {
	return "At least one input iterable is required"
}

// EmptyInputsError occurs when every input iterable has zero length
type EmptyInputsError struct{}

// Error returns a textual representation of this EmptyInputsError
func (e EmptyInputsError) Error() string {
	return "Input iterables must have a non-zero length"
}

// UnevenInputsError occurs when input iterables have differing lengths
type UnevenInputsError struct{ Lengths []int }

// Error returns a textual representation of this UnevenInputsError
func (e UnevenInputsError) Error() string {
	return fmt.Sprintf("Input iterables must all have the same length, got %v", e.Lengths)
}

// PackedTasksError occurs when pre-built task inputs are combined with
// multiple input iterables, which would hide the tasks inside packed tuples
type PackedTasksError struct{}

// Error returns a textual representation of this PackedTasksError
func (e PackedTasksError) Error() string {
	return "Multiple input iterables are not supported when inputs are pre-built tasks"
}

// DivisionsLengthError occurs when supplied divisions do not have exactly
// one more entry than the number of partitions
type DivisionsLengthError struct {
	NPartitions int
	Got         int
}

// Error returns a textual representation of this DivisionsLengthError
func (e DivisionsLengthError) Error() string {
	return fmt.Sprintf("Divisions must have length npartitions+1 (%d), got %d", e.NPartitions+1, e.Got)
}

// InvalidPartitionCountError occurs when a Collection is asked for a
// non-positive number of partitions
type InvalidPartitionCountError struct{ N int }

// Error returns a textual representation of this InvalidPartitionCountError
func (e InvalidPartitionCountError) Error() string {
	return fmt.Sprintf("Partition count must be positive, got %d", e.N)
}

// MetadataUnavailableError occurs when an operation requires a known
// representative value and the Collection has none
type MetadataUnavailableError struct{ Op string }

// Error returns a textual representation of this MetadataUnavailableError
func (e MetadataUnavailableError) Error() string {
	return fmt.Sprintf("Collection metadata required for %s but is unknown", e.Op)
}

// NotRectangularError occurs when a Collection without a single numeric leaf
// type is converted to a rectangular numeric collection
type NotRectangularError struct{ Form string }

// Error returns a textual representation of this NotRectangularError
func (e NotRectangularError) Error() string {
	return fmt.Sprintf("Conversion requires a rectangular numeric form, got %s", e.Form)
}

// NoSuchFieldError occurs when a record field is requested which does not exist
type NoSuchFieldError struct{ Name string }

// Error returns a textual representation of this NoSuchFieldError
func (e NoSuchFieldError) Error() string {
	return fmt.Sprintf("Array has no field named %s", e.Name)
}

// SliceBoundsError occurs when a row range does not fit within an Array
type SliceBoundsError struct {
	Start, Stop, Len int
}

// Error returns a textual representation of this SliceBoundsError
func (e SliceBoundsError) Error() string {
	return fmt.Sprintf("Slice [%d:%d] out of range for array of length %d", e.Start, e.Stop, e.Len)
}

// EmptyDatasetError occurs when a columnar dataset path resolves to no data files
type EmptyDatasetError struct{ Path string }

// Error returns a textual representation of this EmptyDatasetError
func (e EmptyDatasetError) Error() string {
	return fmt.Sprintf("No parquet files found under %s", e.Path)
}

// NoSuchKeyError occurs when a task graph is asked for a key it does not contain
type NoSuchKeyError struct{ Key string }

// Error returns a textual representation of this NoSuchKeyError
func (e NoSuchKeyError) Error() string {
	return fmt.Sprintf("Task graph contains no key %s", e.Key)
}

// HeterogeneousListError occurs when nested input data does not share a
// single structural type across rows
type HeterogeneousListError struct{ Detail string }

// Error returns a textual representation of this HeterogeneousListError
func (e HeterogeneousListError) Error() string {
	return fmt.Sprintf("Input data is not structurally uniform: %s", e.Detail)
}
