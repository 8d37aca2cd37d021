package executor

import (
	"log/slog"
	"sync"

	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// Serial runs work items one at a time, in the order they were scheduled,
// on a single dedicated goroutine. The queue is unbounded so Schedule never
// blocks.
type Serial struct {
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewSerial creates and starts a serial executor.
func NewSerial(name string, opts ...Option) *Serial {
	o := newOptions(opts)
	s := &Serial{
		name:   name,
		logger: o.logger,
		done:   make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Name returns the executor name.
func (s *Serial) Name() string {
	return s.name
}

// Schedule enqueues work. Work scheduled after Close is dropped.
func (s *Serial) Schedule(work func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("executor closed, dropping work", slog.String("executor", s.name))
		return
	}
	s.queue = append(s.queue, work)
	s.mu.Unlock()
	s.cond.Signal()
}

// Len returns the number of queued, not yet started, work items.
func (s *Serial) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close stops accepting work, runs everything already queued, and waits for
// the worker to exit. It must not be called from a work item.
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
	<-s.done
}

func (s *Serial) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		work := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		invoke(s.logger, s.name, work)
	}
}

// Ensure Serial implements the interface.
var _ ports.Executor = (*Serial)(nil)
