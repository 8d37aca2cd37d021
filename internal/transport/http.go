// Package transport provides Transport implementations for the fetch pipeline.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// Middleware decorates a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// HTTPOption configures the HTTP transport.
type HTTPOption func(*HTTP)

// WithHTTPClient sets the client requests are issued on. Its Transport is
// wrapped, not replaced.
func WithHTTPClient(httpClient *http.Client) HTTPOption {
	return func(t *HTTP) {
		t.client = httpClient
	}
}

// WithTimeout sets the overall timeout of each request.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(t *HTTP) {
		t.timeout = timeout
	}
}

// WithSafeDialer rejects connections to private, loopback and link-local
// addresses.
func WithSafeDialer() HTTPOption {
	return func(t *HTTP) {
		t.safe = true
	}
}

// WithTracing instruments requests with OpenTelemetry client spans.
func WithTracing(opts ...otelhttp.Option) HTTPOption {
	return func(t *HTTP) {
		t.tracing = true
		t.tracingOpts = opts
	}
}

// WithMiddleware adds RoundTripper middleware. Middleware added first sits
// closest to the network.
func WithMiddleware(mw Middleware) HTTPOption {
	return func(t *HTTP) {
		t.middleware = append(t.middleware, mw)
	}
}

// HTTP sends requests with a net/http client and reads the whole body.
type HTTP struct {
	client      *http.Client
	timeout     time.Duration
	safe        bool
	tracing     bool
	tracingOpts []otelhttp.Option
	middleware  []Middleware
}

// NewHTTP creates an HTTP transport.
func NewHTTP(opts ...HTTPOption) *HTTP {
	t := &HTTP{client: http.DefaultClient}
	for _, opt := range opts {
		opt(t)
	}

	var rt http.RoundTripper = http.DefaultTransport
	if t.client.Transport != nil {
		rt = t.client.Transport
	}
	if t.safe {
		rt = SafeTransport()
	}
	for _, mw := range t.middleware {
		rt = mw(rt)
	}
	if t.tracing {
		rt = otelhttp.NewTransport(rt, t.tracingOpts...)
	}

	client := *t.client
	client.Transport = rt
	if t.timeout > 0 {
		client.Timeout = t.timeout
	}
	t.client = &client

	return t
}

// Client returns the configured client.
func (t *HTTP) Client() *http.Client {
	return t.client
}

// Send implements ports.Transport. The request runs on its own goroutine.
func (t *HTTP) Send(ctx context.Context, req *http.Request, done func(domain.Envelope)) {
	go func() {
		done(t.roundTrip(ctx, req))
	}()
}

func (t *HTTP) roundTrip(ctx context.Context, req *http.Request) domain.Envelope {
	var env domain.Envelope

	resp, err := t.client.Do(req.WithContext(ctx))
	if err != nil {
		env.Err = fmt.Errorf("request failed: %w", err)
	}
	if resp == nil {
		return env
	}
	env.Metadata = domain.MetadataFromResponse(resp)
	if err != nil {
		// Only a CheckRedirect failure returns both; the body is already closed.
		return env
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	env.Body = body
	if err != nil {
		env.Err = fmt.Errorf("failed to read response: %w", err)
	}
	return env
}

// Ensure HTTP implements the interface.
var _ ports.Transport = (*HTTP)(nil)
