package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/array"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
)

func mustFromAny(t *testing.T, data any) ragged.Array {
	t.Helper()
	a, err := array.FromAny(data)
	require.Nil(t, err)
	return a
}

func TestFromArrayEvenSplit(t *testing.T) {
	src := mustFromAny(t, []any{[]any{1, 2, 3}, []any{4}, []any{5, 6, 7, 8}})
	c, err := FromArray(src, 3)
	require.Nil(t, err)
	require.Equal(t, 3, c.NPartitions())
	require.Equal(t, []int64{0, 1, 2, 3}, c.Divisions())
	require.True(t, c.Meta().IsTypetracer())
	require.True(t, c.Meta().Form().FormEquals(src.Form()))

	got, err := Compute(context.Background(), c)
	require.Nil(t, err)
	require.True(t, array.Equal(src, got))
}

func TestFromArraySelectedPartitions(t *testing.T) {
	src := mustFromAny(t, []any{[]any{1, 2, 3}, []any{4}, []any{5, 6, 7, 8}})
	c, err := FromArray(src, 3)
	require.Nil(t, err)

	sub, err := c.Partitions(0, 1)
	require.Nil(t, err)
	require.Equal(t, 2, sub.NPartitions())
	require.Equal(t, []int64{0, 1, 2}, sub.Divisions())

	got, err := Compute(context.Background(), sub)
	require.Nil(t, err)
	want := mustFromAny(t, []any{[]any{1, 2, 3}, []any{4}})
	require.True(t, array.Equal(want, got))

	_, err = c.Partitions(5)
	require.NotNil(t, err)
	_, err = c.Partitions()
	require.NotNil(t, err)
}

func TestFromArrayUnevenSplit(t *testing.T) {
	rows := make([]any, 10)
	for i := range rows {
		rows[i] = i
	}
	src := mustFromAny(t, rows)
	c, err := FromArray(src, 3)
	require.Nil(t, err)
	// ceil(10/3) = 4 rows per partition, last one short
	require.Equal(t, []int64{0, 4, 8, 10}, c.Divisions())
	require.Equal(t, 3, c.NPartitions())

	got, err := Compute(context.Background(), c)
	require.Nil(t, err)
	require.True(t, array.Equal(src, got))
}

func TestFromArrayNameDeterministic(t *testing.T) {
	src := mustFromAny(t, []any{1, 2, 3, 4})
	a, err := FromArray(src, 2)
	require.Nil(t, err)
	b, err := FromArray(src, 2)
	require.Nil(t, err)
	require.Equal(t, a.Name(), b.Name())

	other, err := FromArray(src, 4)
	require.Nil(t, err)
	require.NotEqual(t, a.Name(), other.Name())
}

func TestFromArrayConfigErrors(t *testing.T) {
	src := mustFromAny(t, []any{1, 2})
	_, err := FromArray(src, 0)
	require.IsType(t, errors.InvalidPartitionCountError{}, err)
	_, err = FromArray(src.Typetracer(), 2)
	require.IsType(t, errors.MetadataUnavailableError{}, err)
}

func TestFromListsDivisionsAndConcat(t *testing.T) {
	a := []any{[]any{1, 2, 3}, []any{4}}
	b := []any{[]any{5}, []any{6, 7, 8}}
	c, err := FromLists([][]any{a, b})
	require.Nil(t, err)
	require.Equal(t, 2, c.NPartitions())
	require.Equal(t, []int64{0, 2, 4}, c.Divisions())

	got, err := Compute(context.Background(), c)
	require.Nil(t, err)
	require.Equal(t, 4, got.Len())
	want := mustFromAny(t, []any{[]any{1, 2, 3}, []any{4}, []any{5}, []any{6, 7, 8}})
	require.True(t, array.Equal(want, got))
	// schema soundness: the declared meta matches the materialized whole
	require.True(t, c.Meta().Form().FormEquals(got.Form()))
}

func TestFromMapValidation(t *testing.T) {
	ident := func(ctx context.Context, args ...any) (any, error) {
		return array.FromAny(args[0])
	}
	_, err := FromMap(nil, [][]any{{1}}, nil)
	require.IsType(t, errors.NilFuncError{}, err)

	_, err = FromMap(ident, nil, nil)
	require.IsType(t, errors.NoInputsError{}, err)

	_, err = FromMap(ident, [][]any{{}}, nil)
	require.IsType(t, errors.EmptyInputsError{}, err)

	_, err = FromMap(ident, [][]any{{1, 2}, {3}}, nil)
	require.IsType(t, errors.UnevenInputsError{}, err)

	_, err = FromMap(ident, [][]any{{1}, {2}}, &FromMapOptions{ProducesTasks: true})
	require.IsType(t, errors.PackedTasksError{}, err)

	_, err = FromMap(ident, [][]any{{1, 2}}, &FromMapOptions{Divisions: []int64{0, 1}})
	require.IsType(t, errors.DivisionsLengthError{}, err)
}

func TestFromMapZipsIterables(t *testing.T) {
	pair := func(ctx context.Context, args ...any) (any, error) {
		return array.FromAny([]any{args[0], args[1]})
	}
	c, err := FromMap(pair, [][]any{{1, 2, 3}, {4, 5, 6}}, &FromMapOptions{Label: "pairs", NoEagerMeta: true})
	require.Nil(t, err)
	require.Equal(t, 3, c.NPartitions())

	got, err := Compute(context.Background(), c)
	require.Nil(t, err)
	want := mustFromAny(t, []any{int64(1), int64(4), int64(2), int64(5), int64(3), int64(6)})
	require.True(t, array.Equal(want, got))
}

func TestFromMapFixedArgs(t *testing.T) {
	repeat := func(ctx context.Context, args ...any) (any, error) {
		n := args[1].(int)
		rows := make([]any, n)
		for i := range rows {
			rows[i] = args[0]
		}
		return array.FromAny(rows)
	}
	c, err := FromMap(repeat, [][]any{{7, 8}}, &FromMapOptions{Args: []any{2}, Label: "repeat"})
	require.Nil(t, err)
	// meta was inferred by computing the first partition once
	require.NotNil(t, c.Meta())
	require.Equal(t, "int64", c.Meta().Form().String())

	got, err := Compute(context.Background(), c)
	require.Nil(t, err)
	want := mustFromAny(t, []any{int64(7), int64(7), int64(8), int64(8)})
	require.True(t, array.Equal(want, got))
}

func TestFromMapProducesTasks(t *testing.T) {
	build := func(ctx context.Context, args ...any) (any, error) {
		return array.FromAny(args[0])
	}
	items := []any{
		graph.Literal([]any{1, 2}),
		graph.Literal([]any{3}),
	}
	c, err := FromMap(build, [][]any{items}, &FromMapOptions{Label: "prebuilt", ProducesTasks: true})
	require.Nil(t, err)
	got, err := Compute(context.Background(), c)
	require.Nil(t, err)
	want := mustFromAny(t, []any{int64(1), int64(2), int64(3)})
	require.True(t, array.Equal(want, got))
}

func TestFromDelayed(t *testing.T) {
	mk := func(rows []any) graph.Delayed {
		return graph.NewDelayed("make-part", graph.NewTask(func(ctx context.Context, args ...any) (any, error) {
			return array.FromAny(args[0])
		}, rows))
	}
	parts := []graph.Delayed{
		mk([]any{[]any{1, 2, 3}, []any{4}}),
		mk([]any{[]any{5}, []any{6, 7, 8}}),
	}
	c, err := FromDelayed(parts, &FromDelayedOptions{Divisions: []int64{0, 2, 4}})
	require.Nil(t, err)
	require.Equal(t, 2, c.NPartitions())
	require.Equal(t, []int64{0, 2, 4}, c.Divisions())
	// meta inferred from computing the first handle
	require.NotNil(t, c.Meta())
	require.Equal(t, "var * int64", c.Meta().Form().String())

	got, err := Compute(context.Background(), c)
	require.Nil(t, err)
	require.Equal(t, 4, got.Len())
}

func TestFromDelayedDivisionsLength(t *testing.T) {
	parts := []graph.Delayed{graph.DelayedValue("p", mustFromAny(t, []any{1}))}
	_, err := FromDelayed(parts, &FromDelayedOptions{Divisions: []int64{0, 1, 2}})
	require.IsType(t, errors.DivisionsLengthError{}, err)
}

func TestToDelayed(t *testing.T) {
	src := mustFromAny(t, []any{1, 2, 3, 4})
	c, err := FromArray(src, 2)
	require.Nil(t, err)

	handles := ToDelayed(c, true)
	require.Len(t, handles, 2)
	v, err := handles[1].Compute(context.Background())
	require.Nil(t, err)
	want := mustFromAny(t, []any{3, 4})
	require.True(t, array.Equal(want, v.(ragged.Array)))
}

func TestUnknownDivisionsStayUnknown(t *testing.T) {
	ident := func(ctx context.Context, args ...any) (any, error) {
		return array.FromAny(args[0])
	}
	c, err := FromMap(ident, [][]any{{[]any{1, 2}, []any{3}}}, &FromMapOptions{Label: "ident", NoEagerMeta: true})
	require.Nil(t, err)
	require.False(t, c.KnownDivisions())
	require.Nil(t, c.Divisions())
	require.Nil(t, c.Meta())
}
