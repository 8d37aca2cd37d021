package runtime

import (
	"context"
	"net/http"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
	"github.com/tjfontaine/polyglot-fetch/internal/decode"
	"github.com/tjfontaine/polyglot-fetch/internal/history"
	"github.com/tjfontaine/polyglot-fetch/internal/pipeline"
	"github.com/tjfontaine/polyglot-fetch/internal/request"
)

// CallOption configures a single call.
type CallOption func(*callOptions)

type callOptions struct {
	owner  *pipeline.Scope
	retain *bool
}

// WithOwner ties the call to s: once s is released the outcome is dropped.
// It turns retention off unless Retained is also given.
func WithOwner(s *pipeline.Scope) CallOption {
	return func(o *callOptions) {
		o.owner = s
		if o.retain == nil {
			off := false
			o.retain = &off
		}
	}
}

// Retained overrides the client's retention setting for one call.
func Retained(retain bool) CallOption {
	return func(o *callOptions) {
		o.retain = &retain
	}
}

func configFor[T any](c *Client, dec ports.Decoder[T], opts []CallOption) *pipeline.Config[T, *domain.FetchError] {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	retain := c.retain
	if co.retain != nil {
		retain = *co.retain
	}

	return &pipeline.Config[T, *domain.FetchError]{
		Classifier: c.classifier,
		Decoder:    dec,
		DecodeOn:   c.decodeOn,
		DeliverOn:  c.deliverOn,
		Retain:     retain,
		Owner:      co.owner,
	}
}

// Do sends req and delivers the decoded outcome to callback on the
// client's delivery executor.
func Do[T any](ctx context.Context, c *Client, req *http.Request, dec ports.Decoder[T], callback func(domain.Outcome[T, *domain.FetchError]), opts ...CallOption) error {
	return fetch(ctx, c, req, configFor(c, dec, opts), callback)
}

// Await sends req and blocks for the outcome.
func Await[T any](ctx context.Context, c *Client, req *http.Request, dec ports.Decoder[T], opts ...CallOption) (domain.Outcome[T, *domain.FetchError], error) {
	cfg := configFor(c, dec, opts)
	return pipeline.Wait(ctx, cfg, func(callback func(domain.Outcome[T, *domain.FetchError])) error {
		return fetch(ctx, c, req, cfg, callback)
	})
}

func fetch[T any](ctx context.Context, c *Client, req *http.Request, cfg *pipeline.Config[T, *domain.FetchError], callback func(domain.Outcome[T, *domain.FetchError])) error {
	finish, settled, err := c.track()
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, finish)
	if !cfg.Retain && cfg.Owner != nil {
		go func() {
			select {
			case <-cfg.Owner.Done():
				finish()
			case <-settled:
			}
		}()
	}

	tracked := ports.TransportFunc(func(ctx context.Context, req *http.Request, done func(domain.Envelope)) {
		c.transport.Send(ctx, req, func(env domain.Envelope) {
			done(env)
			stop()
			finish()
		})
	})

	if c.recorder != nil && callback != nil && req != nil && req.URL != nil {
		callback = history.Observe(c.recorder, req, callback)
	}
	if err := pipeline.Fetch(ctx, pipeline.New(tracked), req, cfg, callback); err != nil {
		stop()
		finish()
		return err
	}
	return nil
}

// Get fetches path with GET and decodes the body as JSON into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...request.RequestOption) (T, error) {
	var zero T

	req, err := c.NewRequest(ctx, request.MethodGet, path, opts...)
	if err != nil {
		return zero, err
	}

	o, err := Await(ctx, c, req, decode.JSON[T]())
	if err != nil {
		return zero, err
	}
	return domain.Unpack(o)
}
