package memory

import (
	"context"
	"sync"
)

type journalContextKey struct{}

// journal collects undo steps for the writes of one unit of work.
type journal struct {
	mu   sync.Mutex
	undo []func()
}

func (j *journal) record(step func()) {
	j.mu.Lock()
	j.undo = append(j.undo, step)
	j.mu.Unlock()
}

func (j *journal) rollback() {
	j.mu.Lock()
	steps := j.undo
	j.undo = nil
	j.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// recordUndo registers step with the unit of work carried by ctx. Writes made
// outside a unit of work are final. Callers hold the repository lock, so step
// must acquire it itself.
func recordUndo(ctx context.Context, step func()) {
	if j, ok := ctx.Value(journalContextKey{}).(*journal); ok {
		j.record(step)
	}
}

// Transactor gives in-memory repositories all-or-nothing units of work.
// A failed unit reverts only the keys it wrote, so writes made concurrently
// outside the unit survive. Units run one at a time and nested calls join the
// outer unit. IDs handed out inside a failed unit are not reused.
type Transactor struct {
	mu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalContextKey{}).(*journal); ok {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalContextKey{}, j)); err != nil {
		j.rollback()
		return err
	}
	return nil
}
