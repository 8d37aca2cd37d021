// Package ports defines the capability interfaces the fetch pipeline is
// assembled from. Any type with the right method set plugs in; there is no
// base type to embed.
package ports

import (
	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
)

// Classifier turns an envelope into success bytes or a typed error.
type Classifier[E any] interface {
	// Extract inspects env and returns the body to decode, or a failure.
	// It must not retain env past the call.
	Extract(env domain.Envelope) domain.Outcome[[]byte, E]

	// FromDecodeError builds the error reported when decoding the bytes
	// returned by Extract fails.
	FromDecodeError(err error, env domain.Envelope) E
}

// Decoder turns success bytes into a typed value. Implementations must be
// safe for concurrent use.
type Decoder[T any] interface {
	Decode(data []byte) (T, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc[T any] func(data []byte) (T, error)

// Decode calls f(data).
func (f DecoderFunc[T]) Decode(data []byte) (T, error) { return f(data) }

// Executor is an execution context the pipeline hops onto. Schedule must
// enqueue work and return without running it on the caller's stack.
type Executor interface {
	Schedule(work func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(work func())

// Schedule calls f(work).
func (f ExecutorFunc) Schedule(work func()) { f(work) }
