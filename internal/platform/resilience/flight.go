package resilience

import (
	"context"
	"sync"
)

// Flight collapses concurrent loads of one key into a single call. The first
// caller runs the load; later callers wait for its result unless their own
// context ends first. The zero value is ready to use.
type Flight[V any] struct {
	mu       sync.Mutex
	inflight map[string]*flightCall[V]
}

type flightCall[V any] struct {
	done chan struct{}
	val  V
	err  error
}

func (f *Flight[V]) Do(ctx context.Context, key string, load func() (V, error)) (V, error) {
	f.mu.Lock()
	if c, ok := f.inflight[key]; ok {
		f.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	if f.inflight == nil {
		f.inflight = make(map[string]*flightCall[V])
	}
	c := &flightCall[V]{done: make(chan struct{})}
	f.inflight[key] = c
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.inflight, key)
		f.mu.Unlock()
		close(c.done)
	}()
	c.val, c.err = load()
	return c.val, c.err
}
