package ragged

import (
	"fmt"
	"strings"
)

// DType enumerates the primitive leaf types supported by Ragged arrays.
type DType int

const (
	// Int64DType is a 64-bit signed integer leaf type
	Int64DType DType = iota
	// Float64DType is a 64-bit floating point leaf type
	Float64DType
	// BoolDType is a boolean leaf type
	BoolDType
	// StringDType is a utf-8 string leaf type
	StringDType
)

// String produces a string representation of a DType
func (d DType) String() string {
	switch d {
	case Int64DType:
		return "int64"
	case Float64DType:
		return "float64"
	case BoolDType:
		return "bool"
	case StringDType:
		return "string"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// IsNumeric returns true iff values of this DType support arithmetic
func (d DType) IsNumeric() bool {
	return d == Int64DType || d == Float64DType
}

// A Form is the structural type descriptor of an Array, independent of the
// data it carries. Two Arrays with equal Forms are interchangeable for the
// purposes of planning and schema propagation, no matter how many rows each
// holds. Forms are immutable after construction.
type Form interface {
	FormEquals(other Form) bool // FormEquals returns true iff the two Forms describe the same structure
	Dims() int                  // Dims returns the nesting depth down the rectangular axis of this Form
	String() string             // String produces a canonical textual representation of this Form
}

// NumericForm describes a flat leaf of primitive values.
type NumericForm struct {
	Dtype DType
}

// FormEquals returns true iff other is a NumericForm with the same Dtype
func (f *NumericForm) FormEquals(other Form) bool {
	o, ok := other.(*NumericForm)
	return ok && o.Dtype == f.Dtype
}

// Dims returns the nesting depth of a NumericForm, which is always 1
func (f *NumericForm) Dims() int {
	return 1
}

// String produces a canonical textual representation of a NumericForm
func (f *NumericForm) String() string {
	return f.Dtype.String()
}

// ListForm describes variable-length lists of some content Form.
type ListForm struct {
	Content Form
}

// FormEquals returns true iff other is a ListForm with equal content
func (f *ListForm) FormEquals(other Form) bool {
	o, ok := other.(*ListForm)
	return ok && f.Content.FormEquals(o.Content)
}

// Dims returns the nesting depth of a ListForm
func (f *ListForm) Dims() int {
	return 1 + f.Content.Dims()
}

// String produces a canonical textual representation of a ListForm
func (f *ListForm) String() string {
	return fmt.Sprintf("var * %s", f.Content)
}

// RecordForm describes records with named field contents. Field order is
// significant and preserved.
type RecordForm struct {
	Fields   []string
	Contents []Form
}

// FormEquals returns true iff other is a RecordForm with the same field
// names and equal field contents, in the same order
func (f *RecordForm) FormEquals(other Form) bool {
	o, ok := other.(*RecordForm)
	if !ok || len(o.Fields) != len(f.Fields) {
		return false
	}
	for i := range f.Fields {
		if f.Fields[i] != o.Fields[i] || !f.Contents[i].FormEquals(o.Contents[i]) {
			return false
		}
	}
	return true
}

// Dims returns the nesting depth of a RecordForm, which is always 1.
// Record fields branch the structure rather than extending the row axis.
func (f *RecordForm) Dims() int {
	return 1
}

// FieldForm returns the Form of the named field, or nil if no such field exists
func (f *RecordForm) FieldForm(name string) Form {
	for i, field := range f.Fields {
		if field == name {
			return f.Contents[i]
		}
	}
	return nil
}

// String produces a canonical textual representation of a RecordForm
func (f *RecordForm) String() string {
	parts := make([]string, len(f.Fields))
	for i := range f.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Fields[i], f.Contents[i])
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// LeafDType descends through ListForm wrappers to the single numeric leaf of
// a Form. It returns false if the Form branches into a record or bottoms out
// at a non-numeric leaf, i.e. if the Form is not rectangular-numeric.
func LeafDType(f Form) (DType, bool) {
	for {
		switch t := f.(type) {
		case *NumericForm:
			return t.Dtype, t.Dtype.IsNumeric()
		case *ListForm:
			f = t.Content
		default:
			return 0, false
		}
	}
}
