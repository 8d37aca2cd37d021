package runtime

import (
	"errors"
	"log/slog"

	"github.com/tjfontaine/polyglot-fetch/internal/classify"
	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
	"github.com/tjfontaine/polyglot-fetch/internal/history"
	"github.com/tjfontaine/polyglot-fetch/internal/request"
	"github.com/tjfontaine/polyglot-fetch/internal/transport"
)

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithTransport replaces the default http/https/file transport.
func WithTransport(t ports.Transport) Option {
	return func(c *Client) error {
		if t == nil {
			return errors.New("nil transport")
		}
		c.transport = t
		return nil
	}
}

// WithHTTPOptions configures the default HTTP transport. It has no effect
// together with WithTransport.
func WithHTTPOptions(opts ...transport.HTTPOption) Option {
	return func(c *Client) error {
		c.httpOpts = append(c.httpOpts, opts...)
		return nil
	}
}

// WithFileRoot confines file:// URLs of the default transport to root.
func WithFileRoot(root string) Option {
	return func(c *Client) error {
		c.fileRoot = root
		return nil
	}
}

// WithBaseURL resolves relative request paths against baseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		c.baseURL = baseURL
		return nil
	}
}

// WithRequestOptions configures the request builder.
func WithRequestOptions(opts ...request.Option) Option {
	return func(c *Client) error {
		c.requestOpts = append(c.requestOpts, opts...)
		return nil
	}
}

// WithClassifier replaces the default classifier. WithAcceptedRange has no
// effect together with it.
func WithClassifier(cl ports.Classifier[*domain.FetchError]) Option {
	return func(c *Client) error {
		if cl == nil {
			return errors.New("nil classifier")
		}
		c.classifier = cl
		return nil
	}
}

// WithAcceptedRange sets the inclusive status range treated as success.
func WithAcceptedRange(min, max int) Option {
	return func(c *Client) error {
		c.classifierOpts = append(c.classifierOpts, classify.WithAcceptedRange(min, max))
		return nil
	}
}

// WithRetain sets whether calls keep their config alive regardless of the
// caller's scope. Calls can override it.
func WithRetain(retain bool) Option {
	return func(c *Client) error {
		c.retain = retain
		return nil
	}
}

// WithExecutors sets where decoding and delivery run. The client does not
// close executors it did not create.
func WithExecutors(decodeOn, deliverOn ports.Executor) Option {
	return func(c *Client) error {
		if decodeOn == nil || deliverOn == nil {
			return errors.New("nil executor")
		}
		c.decodeOn = decodeOn
		c.deliverOn = deliverOn
		return nil
	}
}

// WithRecorder records every delivered outcome.
func WithRecorder(r *history.Recorder) Option {
	return func(c *Client) error {
		c.recorder = r
		return nil
	}
}

// WithLogger sets the logger used by executors the client creates.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}
