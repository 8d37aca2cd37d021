package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// ErrInvalidConfig is returned by Fetch when a call cannot be started.
var ErrInvalidConfig = errors.New("invalid fetch config")

// Config supplies the per-call dependencies of a fetch. Fields must not be
// modified while a call using the config is in flight.
type Config[T any, E error] struct {
	// Classifier splits envelopes into success bytes and typed errors.
	Classifier ports.Classifier[E]

	// Decoder turns success bytes into T.
	Decoder ports.Decoder[T]

	// DecodeOn is where classification and decoding run.
	DecodeOn ports.Executor

	// DeliverOn is where the callback runs.
	DeliverOn ports.Executor

	// Retain copies the config when Fetch is called so the call completes
	// even after Owner is released.
	Retain bool

	// Owner ties the call to the caller's lifetime. A nil owner never
	// releases.
	Owner *Scope
}

func (c *Config[T, E]) validate() error {
	switch {
	case c == nil:
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	case c.Classifier == nil:
		return fmt.Errorf("%w: nil classifier", ErrInvalidConfig)
	case c.Decoder == nil:
		return fmt.Errorf("%w: nil decoder", ErrInvalidConfig)
	case c.DecodeOn == nil:
		return fmt.Errorf("%w: nil decode executor", ErrInvalidConfig)
	case c.DeliverOn == nil:
		return fmt.Errorf("%w: nil deliver executor", ErrInvalidConfig)
	}
	return nil
}

// binding returns the resolver consulted before the transport and decode
// stages, and the guard entered around delivery. A retained config resolves
// to a snapshot taken now and is always delivered; otherwise the live config
// is used for as long as its owner is alive, and a delivery that has started
// holds the owner's Done channel open until it returns.
func (c *Config[T, E]) binding() (resolve func() (*Config[T, E], bool), enter func() (leave func(), ok bool)) {
	if c.Retain {
		snapshot := *c
		resolve = func() (*Config[T, E], bool) {
			return &snapshot, true
		}
		enter = func() (func(), bool) {
			return func() {}, true
		}
		return resolve, enter
	}

	owner := c.Owner
	resolve = func() (*Config[T, E], bool) {
		if !owner.Alive() {
			return nil, false
		}
		return c, true
	}
	enter = func() (func(), bool) {
		if !owner.enter() {
			return nil, false
		}
		return owner.leave, true
	}
	return resolve, enter
}

// Scope is a liveness handle owned by the caller of Fetch. Releasing it
// tells in-flight, non-retained calls that nobody is waiting any more.
// Deliveries already running when Release is called are not interrupted.
type Scope struct {
	mu       sync.Mutex
	released bool
	active   int
	closed   bool
	done     chan struct{}
}

// NewScope returns a live scope.
func NewScope() *Scope {
	return &Scope{done: make(chan struct{})}
}

// Release marks the scope dead. It is safe to call more than once, and from
// a callback delivered under the scope.
func (s *Scope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	s.closeIfIdle()
}

// Alive reports whether the scope is still live. A nil scope is always live.
func (s *Scope) Alive() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.released
}

// Done returns a channel closed once the scope is released and no delivery
// started before the release is still running. A nil scope returns nil,
// which blocks forever.
func (s *Scope) Done() <-chan struct{} {
	if s == nil {
		return nil
	}
	return s.done
}

// enter registers a running delivery. It fails once the scope is released.
func (s *Scope) enter() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return false
	}
	s.active++
	return true
}

func (s *Scope) leave() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--
	s.closeIfIdle()
}

func (s *Scope) closeIfIdle() {
	if s.released && s.active == 0 && !s.closed {
		s.closed = true
		close(s.done)
	}
}
