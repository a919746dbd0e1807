package collection

import (
	"context"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	aarray "github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/go-ragged/ragged/array"
	"github.com/go-ragged/ragged/chunked"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
)

func int64Chunk(t *testing.T, vals ...int64) arrow.Array {
	t.Helper()
	b := aarray.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

func TestFromChunkedKnownDivisions(t *testing.T) {
	x, err := chunked.FromArrays("blocks", []arrow.Array{
		int64Chunk(t, 1, 2, 3),
		int64Chunk(t, 4, 5),
	})
	require.Nil(t, err)
	require.True(t, x.KnownChunks())

	c, err := FromChunked(x)
	require.Nil(t, err)
	require.Equal(t, 2, c.NPartitions())
	require.Equal(t, []int64{0, 3, 5}, c.Divisions())
	require.Equal(t, "int64", c.Meta().Form().String())

	got, err := Compute(context.Background(), c)
	require.Nil(t, err)
	want := mustFromAny(t, []any{1, 2, 3, 4, 5})
	require.True(t, array.Equal(want, got))
}

func TestFromChunkedUnknownDivisions(t *testing.T) {
	x, err := chunked.FromArrays("blocks", []arrow.Array{int64Chunk(t, 1)})
	require.Nil(t, err)
	unknown := chunked.New(x.Name(), x.Graph(), [][]int64{{chunked.UnknownChunkSize}}, x.Dtype())

	c, err := FromChunked(unknown)
	require.Nil(t, err)
	require.False(t, c.KnownDivisions())
}

func TestToChunkedOneDim(t *testing.T) {
	src := mustFromAny(t, []any{1, 2, 3, 4})
	c, err := FromArray(src, 2)
	require.Nil(t, err)

	x, err := ToChunked(c)
	require.Nil(t, err)
	require.Equal(t, 1, x.NDim())
	require.Equal(t, 2, x.NumBlocks())
	require.False(t, x.KnownChunks())
	require.Equal(t, arrow.PrimitiveTypes.Int64, x.Dtype())

	res, err := graph.Execute(context.Background(), x.Graph(), x.Keys())
	require.Nil(t, err)
	require.Equal(t, 2, res[0].(arrow.Array).Len())
	require.Equal(t, 2, res[1].(arrow.Array).Len())
}

func TestToChunkedNested(t *testing.T) {
	src := mustFromAny(t, []any{[]any{1.5, 2.5}, []any{3.5}})
	c, err := FromArray(src, 2)
	require.Nil(t, err)

	x, err := ToChunked(c)
	require.Nil(t, err)
	require.Equal(t, 2, x.NDim())
	require.Equal(t, 2, len(x.Chunks()[0]))
	// one unknown-size placeholder block on each inner axis
	require.Equal(t, []int64{chunked.UnknownChunkSize}, x.Chunks()[1])
	require.Equal(t, arrow.PrimitiveTypes.Float64, x.Dtype())

	res, err := graph.Execute(context.Background(), x.Graph(), x.Keys())
	require.Nil(t, err)
	require.Equal(t, 2, res[0].(arrow.Array).Len())
}

func TestToChunkedRequiresMeta(t *testing.T) {
	ident := func(ctx context.Context, args ...any) (any, error) {
		return array.FromAny(args[0])
	}
	c, err := FromMap(ident, [][]any{{[]any{1}}}, &FromMapOptions{Label: "ident", NoEagerMeta: true})
	require.Nil(t, err)
	_, err = ToChunked(c)
	require.IsType(t, errors.MetadataUnavailableError{}, err)
}

func TestToChunkedRejectsRecords(t *testing.T) {
	src := mustFromAny(t, []any{map[string]any{"x": 1}})
	c, err := FromArray(src, 1)
	require.Nil(t, err)
	_, err = ToChunked(c)
	require.IsType(t, errors.NotRectangularError{}, err)
}

func TestFromChunkedRejectsMultiDim(t *testing.T) {
	x, err := chunked.FromArrays("blocks", []arrow.Array{int64Chunk(t, 1, 2)})
	require.Nil(t, err)
	multi := chunked.New(x.Name(), x.Graph(), [][]int64{{2}, {1}}, x.Dtype())
	_, err = FromChunked(multi)
	require.IsType(t, errors.NotRectangularError{}, err)
}
