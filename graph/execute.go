package graph

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/logging"
)

// Execute materializes the results for the given Keys, resolving each task's
// dependencies first and memoizing every result so shared sub-graphs run
// exactly once. Independent keys run concurrently; partition index order is
// not an execution order. Task failures propagate unwrapped as the failure of
// the requested key which needed them.
func Execute(ctx context.Context, g *Graph, keys []Key) ([]any, error) {
	runID := uuid.Must(uuid.NewV4()).String()[:8]
	log := logging.Logger().WithField("run", runID)
	log.Debugf("executing %d of %d tasks across layers %v", len(keys), g.NumTasks(), g.LayerNames())

	ex := &executor{
		g:       g,
		results: make(map[Key]result),
		pending: make(map[Key]chan struct{}),
	}
	out := make([]any, len(keys))
	eg, egctx := errgroup.WithContext(ctx)
	for i, k := range keys {
		i, k := i, k
		eg.Go(func() error {
			v, err := ex.resolve(egctx, k)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type result struct {
	value any
	err   error
}

type executor struct {
	g       *Graph
	mu      sync.Mutex
	results map[Key]result
	pending map[Key]chan struct{}
}

func (e *executor) resolve(ctx context.Context, k Key) (any, error) {
	e.mu.Lock()
	if r, ok := e.results[k]; ok {
		e.mu.Unlock()
		return r.value, r.err
	}
	if ch, ok := e.pending[k]; ok {
		e.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		e.mu.Lock()
		r := e.results[k]
		e.mu.Unlock()
		return r.value, r.err
	}
	ch := make(chan struct{})
	e.pending[k] = ch
	e.mu.Unlock()

	v, err := e.compute(ctx, k)

	e.mu.Lock()
	e.results[k] = result{value: v, err: err}
	delete(e.pending, k)
	e.mu.Unlock()
	close(ch)
	return v, err
}

func (e *executor) compute(ctx context.Context, k Key) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := e.g.Task(k)
	if !ok {
		return nil, errors.NoSuchKeyError{Key: k.String()}
	}
	return e.run(ctx, t)
}

// run evaluates one Task. Arguments which are Keys resolve through the shared
// memo; arguments which are nested Tasks (pre-built task descriptors fed in
// as partition inputs) evaluate inline.
func (e *executor) run(ctx context.Context, t *Task) (any, error) {
	switch t.kind {
	case literalTask:
		return t.value, nil
	case aliasTask:
		return e.resolve(ctx, t.target)
	default:
		args := make([]any, len(t.args))
		for i, a := range t.args {
			switch arg := a.(type) {
			case Key:
				v, err := e.resolve(ctx, arg)
				if err != nil {
					return nil, err
				}
				args[i] = v
			case *Task:
				v, err := e.run(ctx, arg)
				if err != nil {
					return nil, err
				}
				args[i] = v
			default:
				args[i] = a
			}
		}
		return t.fn(ctx, args...)
	}
}
