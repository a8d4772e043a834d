package container

import (
	"context"
	"fmt"
)

// task is one construction, shared by everyone requesting its cache key.
type task struct {
	key   string
	done  chan struct{}
	value any
	err   error
}

func newTask(key string) *task {
	return &task{key: key, done: make(chan struct{})}
}

// settle records the outcome. It must be called exactly once.
func (t *task) settle(v any, err error) {
	t.value, t.err = v, err
	close(t.done)
}

func (t *task) settled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *task) wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// PendingRef is what an immediate request ("name!") receives: a handle on a
// construction that may still be running. It exists to break dependency
// cycles, so it must not be awaited from inside the factory that received
// it, since that factory is what the referenced construction is waiting for.
type PendingRef struct {
	t *task
}

// Key returns the cache key of the referenced construction.
func (r *PendingRef) Key() string { return r.t.key }

// Done is closed once the construction has settled.
func (r *PendingRef) Done() <-chan struct{} { return r.t.done }

// Ready reports whether the construction has settled.
func (r *PendingRef) Ready() bool { return r.t.settled() }

// Wait blocks until the construction settles or ctx is done.
func (r *PendingRef) Wait(ctx context.Context) (any, error) { return r.t.wait(ctx) }

func (r *PendingRef) String() string { return fmt.Sprintf("PendingRef(%s)", r.t.key) }

// Await waits on ref and asserts the result to T.
func Await[T any](ctx context.Context, ref *PendingRef) (T, error) {
	var zero T
	v, err := ref.Wait(ctx)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: Await[%T]: [%s] resolved to %T", zero, ref.Key(), v)
	}
	return typed, nil
}
