package array

import (
	"fmt"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/errors"
)

// node is one layer of a concrete array layout
type node interface {
	length() int
	form() ragged.Form
	slice(start, stop int) node
	valueAt(i int) any
}

// leafNode holds a flat run of primitive values. Exactly one of the typed
// slices is populated, matching dtype.
type leafNode struct {
	dtype  ragged.DType
	ints   []int64
	floats []float64
	bools  []bool
	strs   []string
}

func (n *leafNode) length() int {
	switch n.dtype {
	case ragged.Int64DType:
		return len(n.ints)
	case ragged.Float64DType:
		return len(n.floats)
	case ragged.BoolDType:
		return len(n.bools)
	default:
		return len(n.strs)
	}
}

func (n *leafNode) form() ragged.Form {
	return &ragged.NumericForm{Dtype: n.dtype}
}

func (n *leafNode) slice(start, stop int) node {
	out := &leafNode{dtype: n.dtype}
	switch n.dtype {
	case ragged.Int64DType:
		out.ints = n.ints[start:stop]
	case ragged.Float64DType:
		out.floats = n.floats[start:stop]
	case ragged.BoolDType:
		out.bools = n.bools[start:stop]
	default:
		out.strs = n.strs[start:stop]
	}
	return out
}

func (n *leafNode) valueAt(i int) any {
	switch n.dtype {
	case ragged.Int64DType:
		return n.ints[i]
	case ragged.Float64DType:
		return n.floats[i]
	case ragged.BoolDType:
		return n.bools[i]
	default:
		return n.strs[i]
	}
}

// listNode holds variable-length rows as offsets into a shared content node.
// Offsets are absolute into content, so slicing narrows the offset window
// without copying content.
type listNode struct {
	offsets []int64 // length+1 entries
	content node
}

func (n *listNode) length() int {
	return len(n.offsets) - 1
}

func (n *listNode) form() ragged.Form {
	return &ragged.ListForm{Content: n.content.form()}
}

func (n *listNode) slice(start, stop int) node {
	return &listNode{offsets: n.offsets[start : stop+1], content: n.content}
}

func (n *listNode) valueAt(i int) any {
	lo, hi := n.offsets[i], n.offsets[i+1]
	row := make([]any, 0, hi-lo)
	for j := lo; j < hi; j++ {
		row = append(row, n.content.valueAt(int(j)))
	}
	return row
}

// recordNode holds named field contents, each the same number of rows
type recordNode struct {
	fields   []string
	contents []node
	nrows    int
}

func (n *recordNode) length() int {
	return n.nrows
}

func (n *recordNode) form() ragged.Form {
	contents := make([]ragged.Form, len(n.contents))
	for i, c := range n.contents {
		contents[i] = c.form()
	}
	return &ragged.RecordForm{Fields: append([]string(nil), n.fields...), Contents: contents}
}

func (n *recordNode) slice(start, stop int) node {
	contents := make([]node, len(n.contents))
	for i, c := range n.contents {
		contents[i] = c.slice(start, stop)
	}
	return &recordNode{fields: n.fields, contents: contents, nrows: stop - start}
}

func (n *recordNode) valueAt(i int) any {
	row := make(map[string]any, len(n.fields))
	for f, field := range n.fields {
		row[field] = n.contents[f].valueAt(i)
	}
	return row
}

// Array is a nested array value implementing ragged.Array. A nil layout marks
// a representative (typetracer) value: same Form, zero rows, no buffers.
type Array struct {
	frm    ragged.Form
	layout node
}

var _ ragged.Array = (*Array)(nil)

func newConcrete(n node) *Array {
	return &Array{frm: n.form(), layout: n}
}

// Len retrieves the number of rows in this Array
func (a *Array) Len() int {
	if a.layout == nil {
		return 0
	}
	return a.layout.length()
}

// Form retrieves the structural type of this Array
func (a *Array) Form() ragged.Form {
	return a.frm
}

// NDim retrieves the nesting depth of this Array down the rectangular axis
func (a *Array) NDim() int {
	return a.frm.Dims()
}

// IsTypetracer returns true iff this Array carries no buffers
func (a *Array) IsTypetracer() bool {
	return a.layout == nil
}

// Typetracer returns a representative stand-in with an identical Form. The
// cost is independent of this Array's size.
func (a *Array) Typetracer() ragged.Array {
	return &Array{frm: a.frm}
}

// Slice returns the row range [start, stop) of this Array. Slicing a
// representative yields a representative of the same Form.
func (a *Array) Slice(start, stop int) (ragged.Array, error) {
	if a.layout == nil {
		return &Array{frm: a.frm}, nil
	}
	if start < 0 || stop < start || stop > a.Len() {
		return nil, errors.SliceBoundsError{Start: start, Stop: stop, Len: a.Len()}
	}
	return newConcrete(a.layout.slice(start, stop)), nil
}

// Field retrieves the named record field. On a representative this yields a
// representative of the field's Form without touching any buffers.
func (a *Array) Field(name string) (ragged.Array, error) {
	rec, ok := a.frm.(*ragged.RecordForm)
	if !ok {
		return nil, errors.NoSuchFieldError{Name: name}
	}
	if a.layout == nil {
		f := rec.FieldForm(name)
		if f == nil {
			return nil, errors.NoSuchFieldError{Name: name}
		}
		return &Array{frm: f}, nil
	}
	rn := a.layout.(*recordNode)
	for i, field := range rn.fields {
		if field == name {
			return newConcrete(rn.contents[i]), nil
		}
	}
	return nil, errors.NoSuchFieldError{Name: name}
}

// Fields lists the record field names of this Array, empty for non-records
func (a *Array) Fields() []string {
	if rec, ok := a.frm.(*ragged.RecordForm); ok {
		return append([]string(nil), rec.Fields...)
	}
	return nil
}

// String produces a string representation of this Array for logging
func (a *Array) String() string {
	if a.layout == nil {
		return fmt.Sprintf("<Array-typetracer %s>", a.frm)
	}
	return fmt.Sprintf("<Array len=%d type='%s'>", a.Len(), a.frm)
}

// TypetracerFromForm builds a representative value directly from a Form,
// with no concrete source. This is the zero-length, zero-buffer construction
// used when a schema is known from metadata alone.
func TypetracerFromForm(f ragged.Form) ragged.Array {
	return &Array{frm: f}
}
