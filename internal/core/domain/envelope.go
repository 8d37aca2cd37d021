// Package domain provides the core types shared by every stage of the fetch pipeline.
package domain

import (
	"net/http"
	"time"
)

// Metadata describes the protocol-level response that accompanied a body.
// Classifiers must check the concrete type before reading protocol fields.
type Metadata interface {
	// Protocol returns the protocol family, e.g. "http" or "file".
	Protocol() string
}

// HTTPMetadata is the metadata of an HTTP response.
type HTTPMetadata struct {
	StatusCode int
	Status     string
	Proto      string
	Header     http.Header
	URL        string
}

// Protocol implements Metadata.
func (m *HTTPMetadata) Protocol() string { return "http" }

// MetadataFromResponse captures the metadata of resp without touching its body.
// Returns nil when resp is nil.
func MetadataFromResponse(resp *http.Response) *HTTPMetadata {
	if resp == nil {
		return nil
	}
	meta := &HTTPMetadata{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Header:     resp.Header.Clone(),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		meta.URL = resp.Request.URL.String()
	}
	return meta
}

// FileMetadata is the metadata of a body read from the local filesystem.
type FileMetadata struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Protocol implements Metadata.
func (m *FileMetadata) Protocol() string { return "file" }

// Envelope is the raw result of one completed transport call. Body, Metadata
// and Err are independent: a transport may report an error alongside a body,
// or a response without a body. A nil Body means no body; an empty non-nil
// Body means an empty one.
type Envelope struct {
	Body     []byte
	Metadata Metadata
	Err      error
}

// HasBody reports whether the transport delivered a body, even an empty one.
func (e Envelope) HasBody() bool {
	return e.Body != nil
}

// HTTP returns the HTTP metadata of the envelope. The second result is false
// when metadata is absent, is a typed nil, or belongs to another protocol.
func (e Envelope) HTTP() (*HTTPMetadata, bool) {
	meta, ok := e.Metadata.(*HTTPMetadata)
	if !ok || meta == nil {
		return nil, false
	}
	return meta, true
}
