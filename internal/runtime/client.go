// Package runtime provides the Client that assembles transport, classifier,
// executors and history into a ready-to-use fetch pipeline.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tjfontaine/polyglot-fetch/internal/classify"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
	"github.com/tjfontaine/polyglot-fetch/internal/executor"
	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/history"
	"github.com/tjfontaine/polyglot-fetch/internal/request"
	"github.com/tjfontaine/polyglot-fetch/internal/transport"
)

// ErrClosed is returned for calls made after Close.
var ErrClosed = errors.New("fetch client closed")

// Client issues fetches with a fixed set of dependencies. Decoders and
// callbacks are chosen per call.
type Client struct {
	// Dependencies (injected via options)
	transport  ports.Transport
	classifier ports.Classifier[*domain.FetchError]
	decodeOn   ports.Executor
	deliverOn  ports.Executor
	recorder   *history.Recorder
	logger     *slog.Logger

	// Settings collected from options before New builds the client
	baseURL        string
	requestOpts    []request.Option
	httpOpts       []transport.HTTPOption
	fileRoot       string
	classifierOpts []classify.Option
	retain         bool

	builder *request.Builder
	owned   []*executor.Serial

	mu        sync.Mutex
	closed    bool
	inflight  sync.WaitGroup
	closeOnce sync.Once
}

// New creates a Client. Without options it fetches http, https and file
// URLs, accepts 2xx responses and any readable file, decodes and delivers on
// two private serial executors, and retains its config for every call.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		logger: slog.Default(),
		retain: true,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if c.classifier == nil {
		status, err := classify.New(c.classifierOpts...)
		if err != nil {
			return nil, err
		}
		c.classifier = classify.NewFiles(status)
	}

	builder, err := request.NewBuilder(c.baseURL, c.requestOpts...)
	if err != nil {
		return nil, err
	}
	c.builder = builder

	if c.transport == nil {
		httpTransport := transport.NewHTTP(c.httpOpts...)
		c.transport = transport.NewMux().
			Handle("http", httpTransport).
			Handle("https", httpTransport).
			Handle("file", transport.NewFile(c.fileRoot))
	}

	if c.decodeOn == nil {
		s := executor.NewSerial("decode", executor.WithLogger(c.logger))
		c.owned = append(c.owned, s)
		c.decodeOn = s
	}
	if c.deliverOn == nil {
		s := executor.NewSerial("deliver", executor.WithLogger(c.logger))
		c.owned = append(c.owned, s)
		c.deliverOn = s
	}

	return c, nil
}

// NewRequest builds a request relative to the client's base URL.
func (c *Client) NewRequest(ctx context.Context, method request.Method, path string, opts ...request.RequestOption) (*http.Request, error) {
	return c.builder.New(ctx, method, path, opts...)
}

// Transport returns the transport requests are sent on.
func (c *Client) Transport() ports.Transport {
	return c.transport
}

// Classifier returns the classifier used for every call.
func (c *Client) Classifier() ports.Classifier[*domain.FetchError] {
	return c.classifier
}

// Close rejects new calls with ErrClosed, waits for calls already in flight
// to hand their envelope to the decode executor, then stops the executors
// the client created. Outcomes already queued are still delivered. A call
// whose context is done, or whose owner is released, no longer holds Close
// up. Close must not be called from a callback.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		c.inflight.Wait()

		// decode first: draining it feeds the deliver queue.
		for _, s := range c.owned {
			s.Close()
		}
	})
	return nil
}

// track registers a call that is about to be sent. finish is idempotent and
// must run once the transport has reported, or once the outcome can no
// longer be delivered.
func (c *Client) track() (finish func(), settled <-chan struct{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, ErrClosed
	}
	c.inflight.Add(1)

	var once sync.Once
	ch := make(chan struct{})
	finish = func() {
		once.Do(func() {
			close(ch)
			c.inflight.Done()
		})
	}
	return finish, ch, nil
}
