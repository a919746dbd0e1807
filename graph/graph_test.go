package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func addTask(a, b int64) *Task {
	return NewTask(func(ctx context.Context, args ...any) (any, error) {
		return args[0].(int64) + args[1].(int64), nil
	}, a, b)
}

func TestGraphLayerComposition(t *testing.T) {
	base := NewLayer("base", []*Task{Literal(int64(1)), Literal(int64(2))})
	g := FromLayer(base)
	require.Equal(t, 2, g.NumTasks())

	double := NewLayer("double", []*Task{
		NewTask(func(ctx context.Context, args ...any) (any, error) {
			return args[0].(int64) * 2, nil
		}, Key{Name: "base", Index: 0}),
		NewTask(func(ctx context.Context, args ...any) (any, error) {
			return args[0].(int64) * 2, nil
		}, Key{Name: "base", Index: 1}),
	})
	g2 := FromLayer(double, g)
	require.Equal(t, 4, g2.NumTasks())
	require.Equal(t, []string{"base"}, g2.Dependencies("double"))
	require.Nil(t, g2.Validate())

	res, err := Execute(context.Background(), g2, double.Keys())
	require.Nil(t, err)
	require.Equal(t, []any{int64(2), int64(4)}, res)
}

func TestGraphTaskLookup(t *testing.T) {
	base := NewLayer("base", []*Task{Literal(int64(1)), Literal(int64(2))})
	g := FromLayer(NewLayer("top", []*Task{addTask(1, 2)}), FromLayer(base))
	require.Equal(t, []string{"base", "top"}, g.LayerNames())

	task, ok := g.Task(Key{Name: "base", Index: 1})
	require.True(t, ok)
	require.NotNil(t, task)

	_, ok = g.Task(Key{Name: "base", Index: 2})
	require.False(t, ok)
	_, ok = g.Task(Key{Name: "nope", Index: 0})
	require.False(t, ok)
}

func TestGraphSharedDependencyRunsOnce(t *testing.T) {
	runs := 0
	shared := NewLayer("shared", []*Task{
		NewTask(func(ctx context.Context, args ...any) (any, error) {
			runs++
			return int64(7), nil
		}),
	})
	g := FromLayer(shared)
	consumers := NewLayer("consumers", []*Task{
		Alias(Key{Name: "shared", Index: 0}),
		Alias(Key{Name: "shared", Index: 0}),
	})
	g2 := FromLayer(consumers, g)
	res, err := Execute(context.Background(), g2, consumers.Keys())
	require.Nil(t, err)
	require.Equal(t, []any{int64(7), int64(7)}, res)
	require.Equal(t, 1, runs)
}

func TestGraphMissingKey(t *testing.T) {
	g := FromLayer(NewLayer("only", []*Task{Literal(1)}))
	_, err := Execute(context.Background(), g, []Key{{Name: "absent", Index: 0}})
	require.NotNil(t, err)
}

func TestGraphValidateRejectsDanglingDependency(t *testing.T) {
	l := NewLayer("top", []*Task{Alias(Key{Name: "missing", Index: 3})})
	g := FromLayer(l)
	require.NotNil(t, g.Validate())
}

func TestOptimizePrunesUnreachableLayers(t *testing.T) {
	a := FromLayer(NewLayer("a", []*Task{Literal(1), Literal(2)}))
	b := FromLayer(NewLayer("b", []*Task{Literal(3)}))
	top := NewLayer("top", []*Task{Alias(Key{Name: "a", Index: 1})})
	g := FromLayer(top, a, b)
	require.Equal(t, 4, g.NumTasks())

	opt := Optimize(g, top.Keys())
	require.Equal(t, 2, opt.NumTasks())
	_, ok := opt.Layer("b")
	require.False(t, ok)
	// the kept layer retains its width so key indices stay valid
	la, ok := opt.Layer("a")
	require.True(t, ok)
	require.Equal(t, 2, len(la.Tasks))
	require.Nil(t, la.Tasks[0])

	res, err := Execute(context.Background(), opt, top.Keys())
	require.Nil(t, err)
	require.Equal(t, []any{2}, res)
}

func TestDelayedCompute(t *testing.T) {
	d := NewDelayed("answer", addTask(40, 2))
	v, err := d.Compute(context.Background())
	require.Nil(t, err)
	require.Equal(t, int64(42), v)

	lit := DelayedValue("value", "x")
	v, err = lit.Compute(context.Background())
	require.Nil(t, err)
	require.Equal(t, "x", v)
}
