// Package decode provides Decoder adapters over common wire formats.
//
// Decoders are stateless and safe for concurrent use. Errors are returned as
// produced by the underlying library so classifiers can inspect them.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"

	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// Format names a wire format understood by ForFormat.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type jsonOptions struct {
	strict bool
}

// JSONOption configures a JSON decoder.
type JSONOption func(*jsonOptions)

// Strict rejects objects with fields the target type does not declare.
func Strict() JSONOption {
	return func(o *jsonOptions) {
		o.strict = true
	}
}

type jsonDecoder[T any] struct {
	strict bool
}

// JSON returns a decoder that unmarshals JSON into T.
func JSON[T any](opts ...JSONOption) ports.Decoder[T] {
	var o jsonOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &jsonDecoder[T]{strict: o.strict}
}

func (d *jsonDecoder[T]) Decode(data []byte) (T, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(data))
	if d.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode json: %w", err)
	}
	// Anything but whitespace after the first value is malformed input,
	// including stray closing delimiters.
	if tok, err := dec.Token(); err != io.EOF {
		var zero T
		if err != nil {
			return zero, fmt.Errorf("decode json: trailing data: %w", err)
		}
		return zero, fmt.Errorf("decode json: unexpected %v after top-level value", tok)
	}
	return v, nil
}

// YAML returns a decoder that unmarshals YAML into T.
func YAML[T any]() ports.Decoder[T] {
	return ports.DecoderFunc[T](func(data []byte) (T, error) {
		var v T
		if err := yaml.Unmarshal(data, &v); err != nil {
			var zero T
			return zero, fmt.Errorf("decode yaml: %w", err)
		}
		return v, nil
	})
}

// Proto returns a decoder that unmarshals protobuf JSON into a message
// allocated by newMsg. Unknown fields are discarded.
func Proto[T proto.Message](newMsg func() T) ports.Decoder[T] {
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}
	return ports.DecoderFunc[T](func(data []byte) (T, error) {
		msg := newMsg()
		if err := opts.Unmarshal(data, msg); err != nil {
			var zero T
			return zero, fmt.Errorf("decode protojson: %w", err)
		}
		return msg, nil
	})
}

// Raw returns a decoder that passes the body through unchanged.
func Raw() ports.Decoder[[]byte] {
	return ports.DecoderFunc[[]byte](func(data []byte) ([]byte, error) {
		return data, nil
	})
}

// Text returns a decoder that yields the body as a string.
func Text() ports.Decoder[string] {
	return ports.DecoderFunc[string](func(data []byte) (string, error) {
		return string(data), nil
	})
}

// ForFormat returns the decoder registered for name.
func ForFormat[T any](name string) (ports.Decoder[T], error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatJSON:
		return JSON[T](), nil
	case FormatYAML, "yml":
		return YAML[T](), nil
	default:
		return nil, fmt.Errorf("unknown decode format %q (must be 'json' or 'yaml')", name)
	}
}
