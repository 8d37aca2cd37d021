package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// Mux routes requests to a transport by URL scheme.
type Mux struct {
	routes map[string]ports.Transport
}

// NewMux creates an empty mux.
func NewMux() *Mux {
	return &Mux{routes: make(map[string]ports.Transport)}
}

// Handle registers t for scheme and returns the mux for chaining.
func (m *Mux) Handle(scheme string, t ports.Transport) *Mux {
	m.routes[strings.ToLower(scheme)] = t
	return m
}

// Send implements ports.Transport. Requests for an unregistered scheme
// complete with an envelope holding only an error.
func (m *Mux) Send(ctx context.Context, req *http.Request, done func(domain.Envelope)) {
	scheme := strings.ToLower(req.URL.Scheme)
	t, ok := m.routes[scheme]
	if !ok {
		go done(domain.Envelope{Err: fmt.Errorf("unsupported URL scheme %q", scheme)})
		return
	}
	t.Send(ctx, req, done)
}

// Sync adapts a blocking round trip into an asynchronous transport by
// running it on a new goroutine.
func Sync(fn func(ctx context.Context, req *http.Request) domain.Envelope) ports.Transport {
	return ports.TransportFunc(func(ctx context.Context, req *http.Request, done func(domain.Envelope)) {
		go func() {
			done(fn(ctx, req))
		}()
	})
}

// Ensure Mux implements the interface.
var _ ports.Transport = (*Mux)(nil)
