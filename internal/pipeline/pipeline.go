package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// ErrDropped is returned by Await when the call ended without an outcome
// because its owner was released.
var ErrDropped = errors.New("fetch dropped: owner released")

// Pipeline issues fetches over a transport. It holds no per-call state and
// is safe for concurrent use.
type Pipeline struct {
	transport ports.Transport
}

// New creates a pipeline over t.
func New(t ports.Transport) *Pipeline {
	return &Pipeline{transport: t}
}

// Transport returns the transport requests are sent on.
func (p *Pipeline) Transport() ports.Transport {
	return p.transport
}

// Fetch sends req and delivers its outcome to callback on cfg.DeliverOn.
//
// The callback runs at most once. It does not run when ctx is cancelled
// before the transport completes, or when cfg is not retained and its owner
// is released before delivery. Fetch returns an error, without sending
// anything, when the call cannot be started.
func Fetch[T any, E error](ctx context.Context, p *Pipeline, req *http.Request, cfg *Config[T, E], callback func(domain.Outcome[T, E])) error {
	switch {
	case p == nil || p.transport == nil:
		return fmt.Errorf("%w: nil transport", ErrInvalidConfig)
	case req == nil:
		return fmt.Errorf("%w: nil request", ErrInvalidConfig)
	case req.URL == nil:
		return fmt.Errorf("%w: request without URL", ErrInvalidConfig)
	case callback == nil:
		return fmt.Errorf("%w: nil callback", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	resolve, enter := cfg.binding()
	var completed atomic.Bool

	p.transport.Send(ctx, req, func(env domain.Envelope) {
		// A transport reporting twice must not produce a second outcome.
		if !completed.CompareAndSwap(false, true) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		c, ok := resolve()
		if !ok {
			return
		}

		c.DecodeOn.Schedule(func() {
			c, ok := resolve()
			if !ok {
				return
			}
			outcome := process(c, env)

			c.DeliverOn.Schedule(func() {
				leave, ok := enter()
				if !ok {
					return
				}
				defer leave()
				callback(outcome)
			})
		})
	})

	return nil
}

// process classifies env and, on success, decodes the extracted bytes.
func process[T any, E error](c *Config[T, E], env domain.Envelope) domain.Outcome[T, E] {
	extracted := c.Classifier.Extract(env)
	if e, failed := extracted.Err(); failed {
		return domain.Failure[T](e)
	}

	data, _ := extracted.Value()
	v, err := decodeSafely(c.Decoder, data)
	if err != nil {
		return domain.Failure[T](c.Classifier.FromDecodeError(err, env))
	}
	return domain.Success[T, E](v)
}

func decodeSafely[T any](dec ports.Decoder[T], data []byte) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panicked: %v", r)
		}
	}()
	return dec.Decode(data)
}

// Await runs Fetch and blocks for the outcome. It returns ctx.Err() when the
// context ends first and ErrDropped when a non-retained call loses its owner.
func Await[T any, E error](ctx context.Context, p *Pipeline, req *http.Request, cfg *Config[T, E]) (domain.Outcome[T, E], error) {
	return Wait(ctx, cfg, func(callback func(domain.Outcome[T, E])) error {
		return Fetch(ctx, p, req, cfg, callback)
	})
}

// Wait starts a call with cfg through start and blocks until the callback
// handed to start receives an outcome. ErrDropped is only returned once the
// owner is released and no delivery is still running, so an outcome that
// reached the callback is never reported as dropped.
func Wait[T any, E error](ctx context.Context, cfg *Config[T, E], start func(callback func(domain.Outcome[T, E])) error) (domain.Outcome[T, E], error) {
	var zero domain.Outcome[T, E]

	ch := make(chan domain.Outcome[T, E], 1)
	if err := start(func(o domain.Outcome[T, E]) { ch <- o }); err != nil {
		return zero, err
	}

	var released <-chan struct{}
	if !cfg.Retain {
		released = cfg.Owner.Done()
	}

	select {
	case o := <-ch:
		return o, nil
	case <-released:
		select {
		case o := <-ch:
			return o, nil
		default:
			return zero, ErrDropped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
