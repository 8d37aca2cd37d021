package ports

import (
	"context"
	"net/http"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
)

// Transport issues requests on behalf of the pipeline.
type Transport interface {
	// Send issues req and reports the result through done, usually from
	// another goroutine. Body, metadata and error are captured as received.
	// When ctx is cancelled a transport may skip calling done entirely.
	Send(ctx context.Context, req *http.Request, done func(domain.Envelope))
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *http.Request, done func(domain.Envelope))

// Send calls f(ctx, req, done).
func (f TransportFunc) Send(ctx context.Context, req *http.Request, done func(domain.Envelope)) {
	f(ctx, req, done)
}
