package array

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	aarray "github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/errors"
)

// wrappedFieldKey marks the synthetic single column used to carry a
// non-record top-level array through a columnar table.
const (
	wrappedFieldName = "values"
	wrappedFieldKey  = "ragged"
)

// DTypeToArrow maps a Ragged leaf type to its Arrow data type
func DTypeToArrow(d ragged.DType) arrow.DataType {
	switch d {
	case ragged.Int64DType:
		return arrow.PrimitiveTypes.Int64
	case ragged.Float64DType:
		return arrow.PrimitiveTypes.Float64
	case ragged.BoolDType:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// ArrowToDType maps an Arrow data type to the Ragged leaf type it reads back
// as. Narrow integer and float types widen to the 64-bit leaf types.
func ArrowToDType(dt arrow.DataType) (ragged.DType, error) {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64, arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return ragged.Int64DType, nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return ragged.Float64DType, nil
	case arrow.BOOL:
		return ragged.BoolDType, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return ragged.StringDType, nil
	default:
		return 0, errors.HeterogeneousListError{Detail: fmt.Sprintf("unsupported arrow type %s", dt)}
	}
}

func formToArrowType(f ragged.Form) (arrow.DataType, error) {
	switch t := f.(type) {
	case *ragged.NumericForm:
		return DTypeToArrow(t.Dtype), nil
	case *ragged.ListForm:
		elem, err := formToArrowType(t.Content)
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elem), nil
	case *ragged.RecordForm:
		fields := make([]arrow.Field, len(t.Fields))
		for i := range t.Fields {
			dt, err := formToArrowType(t.Contents[i])
			if err != nil {
				return nil, err
			}
			fields[i] = arrow.Field{Name: t.Fields[i], Type: dt}
		}
		return arrow.StructOf(fields...), nil
	default:
		return nil, errors.HeterogeneousListError{Detail: fmt.Sprintf("unsupported form %s", f)}
	}
}

// SchemaFromForm derives the Arrow schema an Array of the given Form converts
// to. Record forms map field-per-column; any other form is wrapped in a
// single marked column so the conversion round-trips.
func SchemaFromForm(f ragged.Form) (*arrow.Schema, error) {
	if rec, ok := f.(*ragged.RecordForm); ok {
		fields := make([]arrow.Field, len(rec.Fields))
		for i := range rec.Fields {
			dt, err := formToArrowType(rec.Contents[i])
			if err != nil {
				return nil, err
			}
			fields[i] = arrow.Field{Name: rec.Fields[i], Type: dt}
		}
		return arrow.NewSchema(fields, nil), nil
	}
	dt, err := formToArrowType(f)
	if err != nil {
		return nil, err
	}
	md := arrow.NewMetadata([]string{wrappedFieldKey}, []string{"wrapped"})
	return arrow.NewSchema([]arrow.Field{{Name: wrappedFieldName, Type: dt, Metadata: md}}, nil), nil
}

// FormFromArrowSchema derives the Form an Arrow schema reads back as,
// unwrapping the synthetic single column written by SchemaFromForm.
func FormFromArrowSchema(sc *arrow.Schema) (ragged.Form, error) {
	fields := sc.Fields()
	if len(fields) == 1 && fields[0].Metadata.FindKey(wrappedFieldKey) >= 0 {
		return formFromArrowField(fields[0].Type)
	}
	names := make([]string, len(fields))
	contents := make([]ragged.Form, len(fields))
	for i, f := range fields {
		form, err := formFromArrowField(f.Type)
		if err != nil {
			return nil, err
		}
		names[i] = f.Name
		contents[i] = form
	}
	return &ragged.RecordForm{Fields: names, Contents: contents}, nil
}

func formFromArrowField(dt arrow.DataType) (ragged.Form, error) {
	switch t := dt.(type) {
	case *arrow.ListType:
		content, err := formFromArrowField(t.Elem())
		if err != nil {
			return nil, err
		}
		return &ragged.ListForm{Content: content}, nil
	case *arrow.LargeListType:
		content, err := formFromArrowField(t.Elem())
		if err != nil {
			return nil, err
		}
		return &ragged.ListForm{Content: content}, nil
	case *arrow.StructType:
		names := make([]string, t.NumFields())
		contents := make([]ragged.Form, t.NumFields())
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			form, err := formFromArrowField(f.Type)
			if err != nil {
				return nil, err
			}
			names[i] = f.Name
			contents[i] = form
		}
		return &ragged.RecordForm{Fields: names, Contents: contents}, nil
	default:
		d, err := ArrowToDType(dt)
		if err != nil {
			return nil, err
		}
		return &ragged.NumericForm{Dtype: d}, nil
	}
}

// ToArrowTable converts an Array to a single-record Arrow table. A
// representative converts to a zero-row table with the matching schema.
func ToArrowTable(a ragged.Array, mem memory.Allocator) (arrow.Table, error) {
	arr := a.(*Array)
	schema, err := SchemaFromForm(arr.frm)
	if err != nil {
		return nil, err
	}
	b := aarray.NewRecordBuilder(mem, schema)
	defer b.Release()
	if arr.layout != nil {
		if rn, ok := arr.layout.(*recordNode); ok {
			for i, content := range rn.contents {
				if err := fillBuilder(b.Field(i), content, 0, content.length()); err != nil {
					return nil, err
				}
			}
		} else {
			if err := fillBuilder(b.Field(0), arr.layout, 0, arr.layout.length()); err != nil {
				return nil, err
			}
		}
	}
	rec := b.NewRecord()
	defer rec.Release()
	return aarray.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func fillBuilder(b aarray.Builder, n node, start, stop int) error {
	switch bld := b.(type) {
	case *aarray.Int64Builder:
		bld.AppendValues(n.(*leafNode).ints[start:stop], nil)
	case *aarray.Float64Builder:
		bld.AppendValues(n.(*leafNode).floats[start:stop], nil)
	case *aarray.BooleanBuilder:
		bld.AppendValues(n.(*leafNode).bools[start:stop], nil)
	case *aarray.StringBuilder:
		bld.AppendValues(n.(*leafNode).strs[start:stop], nil)
	case *aarray.ListBuilder:
		ln := n.(*listNode)
		for i := start; i < stop; i++ {
			bld.Append(true)
			if err := fillBuilder(bld.ValueBuilder(), ln.content, int(ln.offsets[i]), int(ln.offsets[i+1])); err != nil {
				return err
			}
		}
	case *aarray.StructBuilder:
		rn := n.(*recordNode)
		for i := start; i < stop; i++ {
			bld.Append(true)
			for f := range rn.contents {
				if err := fillBuilder(bld.FieldBuilder(f), rn.contents[f], i, i+1); err != nil {
					return err
				}
			}
		}
	default:
		return errors.HeterogeneousListError{Detail: fmt.Sprintf("unsupported arrow builder %T", b)}
	}
	return nil
}

// FromArrowTable converts an Arrow table back into a concrete Array,
// unwrapping the synthetic single column when present.
func FromArrowTable(tbl arrow.Table) (ragged.Array, error) {
	sc := tbl.Schema()
	ncols := int(tbl.NumCols())
	nodes := make([]node, ncols)
	for i := 0; i < ncols; i++ {
		chunks := tbl.Column(i).Data().Chunks()
		chunkNodes := make([]node, 0, len(chunks))
		for _, c := range chunks {
			n, err := fromArrowArray(c)
			if err != nil {
				return nil, err
			}
			chunkNodes = append(chunkNodes, compact(n))
		}
		merged, err := mergeNodes(chunkNodes)
		if err != nil {
			return nil, err
		}
		nodes[i] = merged
	}
	fields := sc.Fields()
	if len(fields) == 1 && fields[0].Metadata.FindKey(wrappedFieldKey) >= 0 {
		return newConcrete(nodes[0]), nil
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return newConcrete(&recordNode{fields: names, contents: nodes, nrows: int(tbl.NumRows())}), nil
}

func fromArrowArray(arr arrow.Array) (node, error) {
	if arr.NullN() > 0 {
		return nil, errors.HeterogeneousListError{Detail: "null values are not supported"}
	}
	switch a := arr.(type) {
	case *aarray.Int64:
		return &leafNode{dtype: ragged.Int64DType, ints: append([]int64(nil), a.Int64Values()...)}, nil
	case *aarray.Int32:
		return widenedIntNode(arr.Len(), func(i int) int64 { return int64(a.Value(i)) }), nil
	case *aarray.Int16:
		return widenedIntNode(arr.Len(), func(i int) int64 { return int64(a.Value(i)) }), nil
	case *aarray.Int8:
		return widenedIntNode(arr.Len(), func(i int) int64 { return int64(a.Value(i)) }), nil
	case *aarray.Float64:
		return &leafNode{dtype: ragged.Float64DType, floats: append([]float64(nil), a.Float64Values()...)}, nil
	case *aarray.Float32:
		vals := make([]float64, arr.Len())
		for i := range vals {
			vals[i] = float64(a.Value(i))
		}
		return &leafNode{dtype: ragged.Float64DType, floats: vals}, nil
	case *aarray.Boolean:
		vals := make([]bool, arr.Len())
		for i := range vals {
			vals[i] = a.Value(i)
		}
		return &leafNode{dtype: ragged.BoolDType, bools: vals}, nil
	case *aarray.String:
		vals := make([]string, arr.Len())
		for i := range vals {
			vals[i] = a.Value(i)
		}
		return &leafNode{dtype: ragged.StringDType, strs: vals}, nil
	case *aarray.LargeString:
		vals := make([]string, arr.Len())
		for i := range vals {
			vals[i] = a.Value(i)
		}
		return &leafNode{dtype: ragged.StringDType, strs: vals}, nil
	case *aarray.List:
		content, err := fromArrowArray(a.ListValues())
		if err != nil {
			return nil, err
		}
		raw := a.Offsets()
		offsets := make([]int64, len(raw))
		for i, o := range raw {
			offsets[i] = int64(o)
		}
		return &listNode{offsets: offsets, content: content}, nil
	case *aarray.LargeList:
		content, err := fromArrowArray(a.ListValues())
		if err != nil {
			return nil, err
		}
		return &listNode{offsets: append([]int64(nil), a.Offsets()...), content: content}, nil
	case *aarray.Struct:
		st := a.DataType().(*arrow.StructType)
		names := make([]string, a.NumField())
		contents := make([]node, a.NumField())
		for i := 0; i < a.NumField(); i++ {
			names[i] = st.Field(i).Name
			n, err := fromArrowArray(a.Field(i))
			if err != nil {
				return nil, err
			}
			contents[i] = n
		}
		return &recordNode{fields: names, contents: contents, nrows: a.Len()}, nil
	default:
		return nil, errors.HeterogeneousListError{Detail: fmt.Sprintf("unsupported arrow array %T", arr)}
	}
}

func widenedIntNode(n int, at func(int) int64) node {
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = at(i)
	}
	return &leafNode{dtype: ragged.Int64DType, ints: vals}
}

// ToArrowValues converts a flat numeric Array to a single Arrow array, the
// chunk payload of a rectangular numeric collection.
func ToArrowValues(a ragged.Array, mem memory.Allocator) (arrow.Array, error) {
	arr := a.(*Array)
	leaf, ok := arr.layout.(*leafNode)
	if !ok || !leaf.dtype.IsNumeric() {
		return nil, errors.NotRectangularError{Form: arr.frm.String()}
	}
	switch leaf.dtype {
	case ragged.Int64DType:
		b := aarray.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(leaf.ints, nil)
		return b.NewArray(), nil
	default:
		b := aarray.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(leaf.floats, nil)
		return b.NewArray(), nil
	}
}

// FromArrowValues converts a flat Arrow array into a leaf Array, the inverse
// of ToArrowValues.
func FromArrowValues(arr arrow.Array) (ragged.Array, error) {
	n, err := fromArrowArray(arr)
	if err != nil {
		return nil, err
	}
	if _, ok := n.(*leafNode); !ok {
		return nil, errors.NotRectangularError{Form: n.form().String()}
	}
	return newConcrete(n), nil
}
