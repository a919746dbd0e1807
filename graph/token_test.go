package graph

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func tokenTestFn(ctx context.Context, args ...any) (any, error) {
	return nil, nil
}

func TestTokenizeDeterministic(t *testing.T) {
	a := Tokenize("label", []int64{0, 5, 10}, 3)
	b := Tokenize("label", []int64{0, 5, 10}, 3)
	require.Equal(t, a, b)
	require.Len(t, a, 16)
}

func TestTokenizeDistinguishesInputs(t *testing.T) {
	a := Tokenize("label", []int64{0, 5, 10})
	b := Tokenize("label", []int64{0, 5, 11})
	require.NotEqual(t, a, b)
	require.NotEqual(t, Tokenize("x"), Tokenize("y"))
}

func TestTokenizeMapsOrderIndependent(t *testing.T) {
	a := Tokenize(map[string]any{"a": 1, "b": 2})
	b := Tokenize(map[string]any{"b": 2, "a": 1})
	require.Equal(t, a, b)
}

func TestTokenizeFunctionsByName(t *testing.T) {
	a := Tokenize(PartitionFn(tokenTestFn))
	b := Tokenize(PartitionFn(tokenTestFn))
	require.Equal(t, a, b)
}

func TestFuncname(t *testing.T) {
	name := Funcname(PartitionFn(tokenTestFn))
	require.Contains(t, name, "tokenTestFn")
	require.Equal(t, "func", Funcname(nil))
}
