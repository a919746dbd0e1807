package array

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/errors"
)

// FromAny builds a concrete Array from nested Go data: a slice of rows where
// each row is a primitive, a nested slice, or a map[string]any record. Every
// row must share one structural type; integer rows are widened to float64
// when any row in the same leaf is floating point. Record fields are ordered
// lexicographically, since Go maps carry no order of their own.
func FromAny(data any) (ragged.Array, error) {
	rows, err := toRows(data)
	if err != nil {
		return nil, err
	}
	n, err := buildNode(rows)
	if err != nil {
		return nil, err
	}
	return newConcrete(n), nil
}

// ToAny converts an Array to nested Go data, one element per row.
// Representatives convert to zero rows.
func ToAny(a ragged.Array) []any {
	arr := a.(*Array)
	if arr.layout == nil {
		return []any{}
	}
	out := make([]any, arr.Len())
	for i := range out {
		out[i] = arr.layout.valueAt(i)
	}
	return out
}

func toRows(data any) ([]any, error) {
	if rows, ok := data.([]any); ok {
		return rows, nil
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.HeterogeneousListError{Detail: fmt.Sprintf("expected a slice of rows, got %T", data)}
	}
	rows := make([]any, rv.Len())
	for i := range rows {
		rows[i] = rv.Index(i).Interface()
	}
	return rows, nil
}

func buildNode(rows []any) (node, error) {
	if len(rows) == 0 {
		return nil, errors.HeterogeneousListError{Detail: "cannot infer a form from zero rows"}
	}
	switch first := rows[0].(type) {
	case bool:
		vals := make([]bool, len(rows))
		for i, r := range rows {
			b, ok := r.(bool)
			if !ok {
				return nil, mixedRowError(i, rows[0], r)
			}
			vals[i] = b
		}
		return &leafNode{dtype: ragged.BoolDType, bools: vals}, nil
	case string:
		vals := make([]string, len(rows))
		for i, r := range rows {
			s, ok := r.(string)
			if !ok {
				return nil, mixedRowError(i, rows[0], r)
			}
			vals[i] = s
		}
		return &leafNode{dtype: ragged.StringDType, strs: vals}, nil
	case map[string]any:
		return buildRecordNode(rows)
	default:
		if _, ok := asInt64(first); ok {
			return buildNumericNode(rows)
		}
		if _, ok := asFloat64(first); ok {
			return buildNumericNode(rows)
		}
		if isSliceValue(first) {
			return buildListNode(rows)
		}
		return nil, errors.HeterogeneousListError{Detail: fmt.Sprintf("unsupported row type %T", first)}
	}
}

// buildNumericNode collects a run of numeric rows, producing an int64 leaf
// unless any row is floating point, in which case the whole leaf widens to
// float64.
func buildNumericNode(rows []any) (node, error) {
	allInt := true
	for _, r := range rows {
		if _, ok := asInt64(r); ok {
			continue
		}
		if _, ok := asFloat64(r); ok {
			allInt = false
			continue
		}
		return nil, mixedRowError(0, rows[0], r)
	}
	if allInt {
		vals := make([]int64, len(rows))
		for i, r := range rows {
			vals[i], _ = asInt64(r)
		}
		return &leafNode{dtype: ragged.Int64DType, ints: vals}, nil
	}
	vals := make([]float64, len(rows))
	for i, r := range rows {
		if v, ok := asInt64(r); ok {
			vals[i] = float64(v)
		} else {
			vals[i], _ = asFloat64(r)
		}
	}
	return &leafNode{dtype: ragged.Float64DType, floats: vals}, nil
}

func buildListNode(rows []any) (node, error) {
	offsets := make([]int64, 1, len(rows)+1)
	var children []any
	for i, r := range rows {
		if !isSliceValue(r) {
			return nil, mixedRowError(i, rows[0], r)
		}
		elems, err := toRows(r)
		if err != nil {
			return nil, err
		}
		children = append(children, elems...)
		offsets = append(offsets, int64(len(children)))
	}
	content, err := buildNode(children)
	if err != nil {
		return nil, err
	}
	return &listNode{offsets: offsets, content: content}, nil
}

func buildRecordNode(rows []any) (node, error) {
	first, ok := rows[0].(map[string]any)
	if !ok {
		return nil, mixedRowError(0, rows[0], rows[0])
	}
	fields := make([]string, 0, len(first))
	for k := range first {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	contents := make([]node, len(fields))
	for fi, field := range fields {
		col := make([]any, len(rows))
		for i, r := range rows {
			rec, ok := r.(map[string]any)
			if !ok || len(rec) != len(fields) {
				return nil, errors.HeterogeneousListError{Detail: fmt.Sprintf("row %d does not match record fields %v", i, fields)}
			}
			v, ok := rec[field]
			if !ok {
				return nil, errors.HeterogeneousListError{Detail: fmt.Sprintf("row %d is missing field %s", i, field)}
			}
			col[i] = v
		}
		n, err := buildNode(col)
		if err != nil {
			return nil, err
		}
		contents[fi] = n
	}
	return &recordNode{fields: fields, contents: contents, nrows: len(rows)}, nil
}

func mixedRowError(i int, want, got any) error {
	return errors.HeterogeneousListError{Detail: fmt.Sprintf("row %d has type %T, expected %T", i, got, want)}
}

func isSliceValue(v any) bool {
	if _, ok := v.(string); ok {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
