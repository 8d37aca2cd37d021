// Package classify provides the reference response classifier.
package classify

import (
	"fmt"
	"net/http"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

const (
	defaultMin = http.StatusOK
	defaultMax = 299
)

// Option configures a Status classifier.
type Option func(*Status)

// WithAcceptedRange sets the inclusive range of accepted status codes.
func WithAcceptedRange(min, max int) Option {
	return func(s *Status) {
		s.min = min
		s.max = max
	}
}

// Status classifies envelopes by HTTP status code. It is stateless after
// construction and safe for concurrent use.
type Status struct {
	min int
	max int
}

// New creates a Status classifier accepting 200..299 unless configured otherwise.
func New(opts ...Option) (*Status, error) {
	s := &Status{min: defaultMin, max: defaultMax}
	for _, opt := range opts {
		opt(s)
	}
	if s.min > s.max {
		return nil, fmt.Errorf("invalid accepted range %d..%d", s.min, s.max)
	}
	return s, nil
}

// Default returns the classifier accepting 200..299.
func Default() *Status {
	return &Status{min: defaultMin, max: defaultMax}
}

// Range returns the inclusive accepted range.
func (s *Status) Range() (min, max int) {
	return s.min, s.max
}

// Extract implements ports.Classifier. The checks run in a fixed order:
// HTTP metadata presence, then status range, then body presence.
func (s *Status) Extract(env domain.Envelope) domain.Outcome[[]byte, *domain.FetchError] {
	meta, ok := env.HTTP()
	if !ok {
		return domain.Failure[[]byte](domain.ErrTransportFailure(env))
	}

	if meta.StatusCode < s.min || meta.StatusCode > s.max {
		return domain.Failure[[]byte](domain.ErrHTTPStatus(meta.StatusCode, env))
	}

	if !env.HasBody() {
		return domain.Failure[[]byte](domain.ErrNoBody(env))
	}

	return domain.Success[[]byte, *domain.FetchError](env.Body)
}

// FromDecodeError implements ports.Classifier.
func (s *Status) FromDecodeError(err error, env domain.Envelope) *domain.FetchError {
	return domain.ErrDecodeFailure(err, env)
}

// Ensure Status implements the interface.
var _ ports.Classifier[*domain.FetchError] = (*Status)(nil)
