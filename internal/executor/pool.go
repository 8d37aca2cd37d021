package executor

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// Pool runs work items concurrently, at most limit at a time. Ordering
// between work items is not guaranteed.
type Pool struct {
	name   string
	limit  int64
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a pool running at most limit items at once. A limit below
// one defaults to GOMAXPROCS.
func NewPool(name string, limit int64, opts ...Option) *Pool {
	if limit < 1 {
		limit = int64(runtime.GOMAXPROCS(0))
	}
	o := newOptions(opts)
	return &Pool{
		name:   name,
		limit:  limit,
		sem:    semaphore.NewWeighted(limit),
		logger: o.logger,
	}
}

// Name returns the executor name.
func (p *Pool) Name() string {
	return p.name
}

// Limit returns the concurrency limit.
func (p *Pool) Limit() int64 {
	return p.limit
}

// Schedule starts work on its own goroutine once a slot is free. It never
// blocks the caller.
func (p *Pool) Schedule(work func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// Acquire with a background context cannot fail.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		invoke(p.logger, p.name, work)
	}()
}

// Wait blocks until every scheduled work item has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Ensure Pool implements the interface.
var _ ports.Executor = (*Pool)(nil)
