// Package fetch provides the public API for issuing typed HTTP fetches.
// This is the stable API for external consumers.
//
// A Client sends a request, classifies the response by status, decodes the
// body and delivers exactly one Outcome to a callback on an executor:
//
//	c, err := fetch.New(fetch.WithBaseURL("https://api.example.com"))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	user, err := fetch.Get[User](ctx, c, "/users/1")
package fetch

import (
	"context"
	"net/http"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
	"github.com/tjfontaine/polyglot-fetch/internal/decode"
	"github.com/tjfontaine/polyglot-fetch/internal/executor"
	"github.com/tjfontaine/polyglot-fetch/internal/pipeline"
	"github.com/tjfontaine/polyglot-fetch/internal/request"
	"github.com/tjfontaine/polyglot-fetch/internal/runtime"
	"github.com/tjfontaine/polyglot-fetch/internal/transport"
)

// Client issues fetches. See internal/runtime.Client for full documentation.
type Client = runtime.Client

// Option is a functional option for configuring a Client.
type Option = runtime.Option

// CallOption configures a single call.
type CallOption = runtime.CallOption

// Core types
type (
	Outcome[T, E any]      = domain.Outcome[T, E]
	Error                  = domain.FetchError
	ErrorKind              = domain.ErrorKind
	Envelope               = domain.Envelope
	HTTPMetadata           = domain.HTTPMetadata
	FileMetadata           = domain.FileMetadata
	Transport              = ports.Transport
	Executor               = ports.Executor
	Decoder[T any]         = ports.Decoder[T]
	Classifier[E any]      = ports.Classifier[E]
	Scope                  = pipeline.Scope
	Pipeline               = pipeline.Pipeline
	Config[T any, E error] = pipeline.Config[T, E]
	Method                 = request.Method
)

// Error kinds
const (
	KindTransportFailure = domain.KindTransportFailure
	KindNoBody           = domain.KindNoBody
	KindHTTPStatus       = domain.KindHTTPStatus
	KindDecodeFailure    = domain.KindDecodeFailure
)

// Errors
var (
	ErrInvalidConfig = pipeline.ErrInvalidConfig
	ErrDropped       = pipeline.ErrDropped
	ErrClosed        = runtime.ErrClosed
)

// New creates a Client with the given options.
var New = runtime.New

// Configuration options
var (
	WithTransport      = runtime.WithTransport
	WithHTTPOptions    = runtime.WithHTTPOptions
	WithFileRoot       = runtime.WithFileRoot
	WithBaseURL        = runtime.WithBaseURL
	WithRequestOptions = runtime.WithRequestOptions
	WithAcceptedRange  = runtime.WithAcceptedRange
	WithClassifier     = runtime.WithClassifier
	WithRetain         = runtime.WithRetain
	WithExecutors      = runtime.WithExecutors
	WithRecorder       = runtime.WithRecorder
	WithLogger         = runtime.WithLogger

	// Per-call options
	WithOwner = runtime.WithOwner
	Retained  = runtime.Retained

	// Scopes, executors and pipelines
	NewScope    = pipeline.NewScope
	NewSerial   = executor.NewSerial
	NewPool     = executor.NewPool
	NewPipeline = pipeline.New

	// Transports
	NewHTTPTransport = transport.NewHTTP
	NewFileTransport = transport.NewFile
	NewMux           = transport.NewMux
)

// Do sends req and delivers the decoded outcome to callback.
func Do[T any](ctx context.Context, c *Client, req *http.Request, dec Decoder[T], callback func(Outcome[T, *Error]), opts ...CallOption) error {
	return runtime.Do(ctx, c, req, dec, callback, opts...)
}

// Await sends req and blocks for the outcome.
func Await[T any](ctx context.Context, c *Client, req *http.Request, dec Decoder[T], opts ...CallOption) (Outcome[T, *Error], error) {
	return runtime.Await(ctx, c, req, dec, opts...)
}

// Get fetches path and decodes the JSON body into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return runtime.Get[T](ctx, c, path)
}

// Fetch runs a single call on p with a caller-supplied classifier.
func Fetch[T any, E error](ctx context.Context, p *Pipeline, req *http.Request, cfg *Config[T, E], callback func(Outcome[T, E])) error {
	return pipeline.Fetch(ctx, p, req, cfg, callback)
}

// JSON decodes JSON bodies into T.
func JSON[T any]() Decoder[T] {
	return decode.JSON[T]()
}

// YAML decodes YAML bodies into T.
func YAML[T any]() Decoder[T] {
	return decode.YAML[T]()
}

// Unpack converts an outcome into Go's (value, error) form.
func Unpack[T any](o Outcome[T, *Error]) (T, error) {
	return domain.Unpack(o)
}

// Success returns an Outcome holding v. Custom classifiers use it.
func Success[T, E any](v T) Outcome[T, E] {
	return domain.Success[T, E](v)
}

// Failure returns an Outcome holding err. Custom classifiers use it.
func Failure[T, E any](err E) Outcome[T, E] {
	return domain.Failure[T, E](err)
}
