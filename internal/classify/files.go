package classify

import (
	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
)

// Files accepts bodies read from the local filesystem and hands every other
// envelope to the wrapped classifier.
type Files struct {
	next ports.Classifier[*domain.FetchError]
}

// NewFiles wraps next, usually a *Status.
func NewFiles(next ports.Classifier[*domain.FetchError]) *Files {
	return &Files{next: next}
}

// Extract implements ports.Classifier. A file envelope is a transport failure
// when the read failed, no_body when nothing was read, and a success
// otherwise.
func (f *Files) Extract(env domain.Envelope) domain.Outcome[[]byte, *domain.FetchError] {
	meta, ok := env.Metadata.(*domain.FileMetadata)
	if !ok || meta == nil {
		return f.next.Extract(env)
	}
	if env.Err != nil {
		return domain.Failure[[]byte](domain.ErrTransportFailure(env))
	}
	if !env.HasBody() {
		return domain.Failure[[]byte](domain.ErrNoBody(env))
	}
	return domain.Success[[]byte, *domain.FetchError](env.Body)
}

// FromDecodeError implements ports.Classifier.
func (f *Files) FromDecodeError(err error, env domain.Envelope) *domain.FetchError {
	if _, ok := env.Metadata.(*domain.FileMetadata); ok {
		return domain.ErrDecodeFailure(err, env)
	}
	return f.next.FromDecodeError(err, env)
}

// Ensure Files implements the interface.
var _ ports.Classifier[*domain.FetchError] = (*Files)(nil)
