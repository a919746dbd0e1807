package array

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-ragged/ragged"
)

func TestFromAnyNestedLists(t *testing.T) {
	a, err := FromAny([]any{[]any{1, 2, 3}, []any{4}, []any{5, 6, 7, 8}})
	require.Nil(t, err)
	require.Equal(t, 3, a.Len())
	require.Equal(t, 2, a.NDim())
	require.Equal(t, "var * int64", a.Form().String())
	require.Equal(t, []any{
		[]any{int64(1), int64(2), int64(3)},
		[]any{int64(4)},
		[]any{int64(5), int64(6), int64(7), int64(8)},
	}, ToAny(a))
}

func TestFromAnyWidensMixedNumerics(t *testing.T) {
	a, err := FromAny([]any{1, 2.5, 3})
	require.Nil(t, err)
	require.Equal(t, "float64", a.Form().String())
	require.Equal(t, []any{1.0, 2.5, 3.0}, ToAny(a))
}

func TestFromAnyRecords(t *testing.T) {
	a, err := FromAny([]any{
		map[string]any{"x": 1, "y": []any{1.5, 2.5}},
		map[string]any{"x": 2, "y": []any{}},
	})
	require.Nil(t, err)
	require.Equal(t, 2, a.Len())
	require.Equal(t, []string{"x", "y"}, a.Fields())

	x, err := a.Field("x")
	require.Nil(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, ToAny(x))

	_, err = a.Field("z")
	require.NotNil(t, err)
}

func TestFromAnyRejectsMixedRows(t *testing.T) {
	_, err := FromAny([]any{1, "two"})
	require.NotNil(t, err)
	_, err = FromAny([]any{[]any{1}, 2})
	require.NotNil(t, err)
	_, err = FromAny([]any{})
	require.NotNil(t, err)
}

func TestSliceRows(t *testing.T) {
	a, err := FromAny([]any{[]any{1, 2, 3}, []any{4}, []any{5, 6, 7, 8}})
	require.Nil(t, err)

	mid, err := a.Slice(1, 3)
	require.Nil(t, err)
	require.Equal(t, 2, mid.Len())
	require.Equal(t, []any{
		[]any{int64(4)},
		[]any{int64(5), int64(6), int64(7), int64(8)},
	}, ToAny(mid))
	require.True(t, mid.Form().FormEquals(a.Form()))

	_, err = a.Slice(2, 5)
	require.NotNil(t, err)
}

func TestTypetracerPropagatesForm(t *testing.T) {
	a, err := FromAny([]any{
		map[string]any{"pt": []any{1.0, 2.0}, "n": 3},
	})
	require.Nil(t, err)

	tt := a.Typetracer()
	require.True(t, tt.IsTypetracer())
	require.Equal(t, 0, tt.Len())
	require.True(t, tt.Form().FormEquals(a.Form()))

	// structural operations on the representative stay total and
	// propagate the same forms the concrete operations would
	sliced, err := tt.Slice(0, 0)
	require.Nil(t, err)
	require.True(t, sliced.Form().FormEquals(a.Form()))

	pt, err := tt.Field("pt")
	require.Nil(t, err)
	cpt, err := a.Field("pt")
	require.Nil(t, err)
	require.True(t, pt.Form().FormEquals(cpt.Form()))
	require.True(t, pt.(*Array).IsTypetracer())

	_, err = tt.Field("absent")
	require.NotNil(t, err)
}

func TestTypetracerFromForm(t *testing.T) {
	f := &ragged.ListForm{Content: &ragged.NumericForm{Dtype: ragged.Float64DType}}
	tt := TypetracerFromForm(f)
	require.True(t, tt.IsTypetracer())
	require.Equal(t, "var * float64", tt.Form().String())
}

func TestConcatRoundTrip(t *testing.T) {
	a, err := FromAny([]any{[]any{1, 2, 3}, []any{4}, []any{5, 6, 7, 8}})
	require.Nil(t, err)

	var parts []ragged.Array
	for i := 0; i < 3; i++ {
		p, err := a.Slice(i, i+1)
		require.Nil(t, err)
		parts = append(parts, p)
	}
	back, err := Concat(parts...)
	require.Nil(t, err)
	require.True(t, Equal(a, back))
}

func TestConcatRecords(t *testing.T) {
	a, err := FromAny([]any{map[string]any{"v": []any{1, 2}}, map[string]any{"v": []any{3}}})
	require.Nil(t, err)
	b, err := FromAny([]any{map[string]any{"v": []any{}}})
	require.Nil(t, err)

	joined, err := Concat(a, b)
	require.Nil(t, err)
	require.Equal(t, 3, joined.Len())
	require.True(t, joined.Form().FormEquals(a.Form()))
}

func TestConcatRejectsMixedForms(t *testing.T) {
	a, err := FromAny([]any{1, 2})
	require.Nil(t, err)
	b, err := FromAny([]any{"x"})
	require.Nil(t, err)
	_, err = Concat(a, b)
	require.NotNil(t, err)
}
