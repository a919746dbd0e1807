package graph

import (
	"context"
	"fmt"
)

// A Key addresses one task within a Graph: the name of the layer it belongs
// to, paired with its partition index within that layer.
type Key struct {
	Name  string
	Index int
}

// String produces a string representation of a Key
func (k Key) String() string {
	return fmt.Sprintf("(%s, %d)", k.Name, k.Index)
}

// A PartitionFn materializes one partition from its resolved inputs. It must
// be idempotent and free of cross-partition shared mutable state, since the
// scheduler may run it concurrently with any other partition's function.
type PartitionFn func(ctx context.Context, args ...any) (any, error)

type taskKind int

const (
	fnTask taskKind = iota
	literalTask
	aliasTask
)

// A Task is one addressable unit of work in a Graph: a function applied to
// arguments, a literal value, or an alias to another task's result. Arguments
// which are Keys are resolved to the corresponding task results before the
// function runs.
type Task struct {
	kind   taskKind
	fn     PartitionFn
	args   []any
	value  any
	target Key
}

// NewTask creates a Task which applies fn to args. Any arg which is a Key is
// substituted with that key's result at execution time.
func NewTask(fn PartitionFn, args ...any) *Task {
	return &Task{kind: fnTask, fn: fn, args: args}
}

// Literal creates a Task whose result is a fixed value
func Literal(v any) *Task {
	return &Task{kind: literalTask, value: v}
}

// Alias creates a Task whose result is another task's result
func Alias(target Key) *Task {
	return &Task{kind: aliasTask, target: target}
}

// Dependencies lists the Keys this Task's result depends on
func (t *Task) Dependencies() []Key {
	switch t.kind {
	case aliasTask:
		return []Key{t.target}
	case fnTask:
		var deps []Key
		for _, a := range t.args {
			switch arg := a.(type) {
			case Key:
				deps = append(deps, arg)
			case *Task:
				deps = append(deps, arg.Dependencies()...)
			}
		}
		return deps
	default:
		return nil
	}
}

// Token returns this Task's stable content identity, so Tasks can appear as
// partition inputs without defeating content-addressed naming
func (t *Task) Token() string {
	return Tokenize(t.tokenParts()...)
}

// tokenParts returns the values contributing to this Task's content identity
func (t *Task) tokenParts() []any {
	switch t.kind {
	case aliasTask:
		return []any{"alias", t.target}
	case literalTask:
		return []any{"literal", t.value}
	default:
		parts := []any{"task", Funcname(t.fn)}
		parts = append(parts, t.args...)
		return parts
	}
}
