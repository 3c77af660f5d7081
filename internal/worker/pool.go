// Package worker provides the specialist side of the delegation fleet: a
// concurrency-bounded job pool and the built-in stub specialists used by the
// reference worker binary and the test suites.
package worker

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/semaphore"
)

// Pool limits concurrent jobs in a worker process using a weighted semaphore.
// A specialist that shells out or holds large working sets should run every
// job through a shared Pool to prevent resource exhaustion.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a Pool that allows at most limit concurrent jobs.
func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(limit))}
}

// Run acquires a slot, runs fn, and releases the slot.
// Blocks if all slots are busy. Returns ctx.Err() if the context
// is cancelled while waiting for a slot.
// If the pool is nil, fn is executed directly without concurrency control.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	if p == nil || p.sem == nil {
		return fn()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}

// Bound wraps a handler so that every invocation runs through the pool.
func (p *Pool) Bound(h Handler) Handler {
	return func(ctx context.Context, input json.RawMessage) (out json.RawMessage, err error) {
		runErr := p.Run(ctx, func() error {
			out, err = h(ctx, input)
			return nil
		})
		if runErr != nil {
			return nil, runErr
		}
		return out, err
	}
}
