package array

import (
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/go-ragged/ragged"
)

func TestArrowTableRoundTripRecords(t *testing.T) {
	a, err := FromAny([]any{
		map[string]any{"n": 1, "pts": []any{1.5, 2.5}, "tag": "a"},
		map[string]any{"n": 2, "pts": []any{}, "tag": "b"},
		map[string]any{"n": 3, "pts": []any{9.0}, "tag": "c"},
	})
	require.Nil(t, err)

	tbl, err := ToArrowTable(a, memory.DefaultAllocator)
	require.Nil(t, err)
	defer tbl.Release()
	require.Equal(t, int64(3), tbl.NumRows())
	require.Equal(t, int64(3), tbl.NumCols())

	back, err := FromArrowTable(tbl)
	require.Nil(t, err)
	require.True(t, Equal(a, back))
}

func TestArrowTableRoundTripWrapped(t *testing.T) {
	a, err := FromAny([]any{[]any{1, 2, 3}, []any{4}})
	require.Nil(t, err)

	tbl, err := ToArrowTable(a, memory.DefaultAllocator)
	require.Nil(t, err)
	defer tbl.Release()
	// non-record arrays travel as a single marked column
	require.Equal(t, int64(1), tbl.NumCols())

	back, err := FromArrowTable(tbl)
	require.Nil(t, err)
	require.True(t, Equal(a, back))
}

func TestSchemaFormRoundTrip(t *testing.T) {
	a, err := FromAny([]any{
		map[string]any{"x": 1, "nested": []any{[]any{true}}},
	})
	require.Nil(t, err)

	sc, err := SchemaFromForm(a.Form())
	require.Nil(t, err)
	f, err := FormFromArrowSchema(sc)
	require.Nil(t, err)
	require.True(t, f.FormEquals(a.Form()))
}

func TestArrowValuesRoundTrip(t *testing.T) {
	a, err := FromAny([]any{1, 2, 3, 4})
	require.Nil(t, err)

	vals, err := ToArrowValues(a, memory.DefaultAllocator)
	require.Nil(t, err)
	defer vals.Release()
	require.Equal(t, 4, vals.Len())

	back, err := FromArrowValues(vals)
	require.Nil(t, err)
	require.True(t, Equal(a, back))
}

func TestArrowValuesRejectsNested(t *testing.T) {
	a, err := FromAny([]any{[]any{1}, []any{2}})
	require.Nil(t, err)
	_, err = ToArrowValues(a, memory.DefaultAllocator)
	require.NotNil(t, err)
}

func TestTypetracerToArrowTableIsEmpty(t *testing.T) {
	f := &ragged.RecordForm{
		Fields:   []string{"x"},
		Contents: []ragged.Form{&ragged.NumericForm{Dtype: ragged.Int64DType}},
	}
	tbl, err := ToArrowTable(TypetracerFromForm(f), memory.DefaultAllocator)
	require.Nil(t, err)
	defer tbl.Release()
	require.Equal(t, int64(0), tbl.NumRows())
}
