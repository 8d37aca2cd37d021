// Package request builds outgoing *http.Request values for the fetch
// pipeline.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Method is an HTTP method the builder accepts.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodHead    Method = http.MethodHead
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodOptions Method = http.MethodOptions
)

// ParseMethod maps a case-insensitive method name to a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodOptions:
		return m, nil
	case "":
		return MethodGet, nil
	}
	return "", fmt.Errorf("unsupported method %q", s)
}

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "polyglot-fetch/1.0"

// RequestIDHeader carries the per-request ID.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID stores id in ctx so the builder reuses it instead of
// generating a new one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the ID stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Option configures a Builder.
type Option func(*Builder)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(b *Builder) {
		b.userAgent = ua
	}
}

// WithDefaultHeader adds a header sent on every request.
func WithDefaultHeader(key, value string) Option {
	return func(b *Builder) {
		b.headers.Add(key, value)
	}
}

// WithRequestIDs enables the X-Request-ID header.
func WithRequestIDs(enabled bool) Option {
	return func(b *Builder) {
		b.requestIDs = enabled
	}
}

// Builder creates requests relative to a base URL.
type Builder struct {
	base       *url.URL
	userAgent  string
	headers    http.Header
	requestIDs bool
}

// NewBuilder creates a builder. An empty baseURL means every path must be
// an absolute URL.
func NewBuilder(baseURL string, opts ...Option) (*Builder, error) {
	b := &Builder{
		userAgent: DefaultUserAgent,
		headers:   make(http.Header),
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		b.base = u
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// RequestOption configures a single request.
type RequestOption func(*requestParts) error

type requestParts struct {
	query       url.Values
	headers     http.Header
	body        io.Reader
	contentType string
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) RequestOption {
	return func(s *requestParts) error {
		s.query.Add(key, value)
		return nil
	}
}

// WithHeader sets a request header, replacing any default.
func WithHeader(key, value string) RequestOption {
	return func(s *requestParts) error {
		s.headers.Set(key, value)
		return nil
	}
}

// WithBody sends data with the given content type.
func WithBody(contentType string, data []byte) RequestOption {
	return func(s *requestParts) error {
		s.body = bytes.NewReader(data)
		s.contentType = contentType
		return nil
	}
}

// WithJSONBody marshals v as the request body.
func WithJSONBody(v any) RequestOption {
	return func(s *requestParts) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		s.body = bytes.NewReader(data)
		s.contentType = "application/json"
		return nil
	}
}

// New builds a request for path. Absolute URLs are used as given; anything
// else is resolved against the base URL.
func (b *Builder) New(ctx context.Context, method Method, path string, opts ...RequestOption) (*http.Request, error) {
	target, err := b.resolve(path)
	if err != nil {
		return nil, err
	}

	s := &requestParts{query: make(url.Values), headers: make(http.Header)}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if len(s.query) > 0 {
		q := target.Query()
		for k, vs := range s.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, string(method), target.String(), s.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range b.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	if b.userAgent != "" {
		req.Header.Set("User-Agent", b.userAgent)
	}
	if s.contentType != "" {
		req.Header.Set("Content-Type", s.contentType)
	}
	for k, vs := range s.headers {
		req.Header[k] = vs
	}
	if b.requestIDs && req.Header.Get(RequestIDHeader) == "" {
		id := RequestIDFromContext(ctx)
		if id == "" {
			id = uuid.New().String()
		}
		req.Header.Set(RequestIDHeader, id)
	}

	return req, nil
}

func (b *Builder) resolve(path string) (*url.URL, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", path, err)
	}
	if u.IsAbs() {
		return u, nil
	}
	if b.base == nil {
		return nil, fmt.Errorf("relative URL %q without a base URL", path)
	}
	return b.base.ResolveReference(&url.URL{
		Path:     strings.TrimPrefix(u.Path, "/"),
		RawQuery: u.RawQuery,
	}), nil
}
