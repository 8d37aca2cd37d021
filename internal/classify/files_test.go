package classify

import (
	"errors"
	"testing"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
)

func TestFiles_Extract(t *testing.T) {
	fileMeta := &domain.FileMetadata{Path: "/srv/item.json", Size: 8}
	var typedNil *domain.FileMetadata

	tests := []struct {
		name     string
		env      domain.Envelope
		wantKind domain.ErrorKind // empty means success
		wantCode int
	}{
		{
			name: "file with body",
			env:  domain.Envelope{Body: []byte(`{"id":1}`), Metadata: fileMeta},
		},
		{
			name: "empty file",
			env:  domain.Envelope{Body: []byte{}, Metadata: fileMeta},
		},
		{
			name:     "file without body",
			env:      domain.Envelope{Metadata: fileMeta},
			wantKind: domain.KindNoBody,
		},
		{
			name:     "read error",
			env:      domain.Envelope{Metadata: fileMeta, Err: errors.New("permission denied")},
			wantKind: domain.KindTransportFailure,
		},
		{
			name:     "typed nil file metadata falls through",
			env:      domain.Envelope{Body: []byte("x"), Metadata: typedNil},
			wantKind: domain.KindTransportFailure,
		},
		{
			name: "http success is delegated",
			env:  domain.Envelope{Body: []byte(`{}`), Metadata: httpMeta(200)},
		},
		{
			name:     "http status is delegated",
			env:      domain.Envelope{Body: []byte(`{}`), Metadata: httpMeta(500)},
			wantKind: domain.KindHTTPStatus,
			wantCode: 500,
		},
		{
			name:     "no metadata is delegated",
			env:      domain.Envelope{Err: errors.New("dial failed")},
			wantKind: domain.KindTransportFailure,
		},
	}

	f := NewFiles(Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Extract(tt.env)
			fe, failed := got.Err()
			if tt.wantKind == "" {
				if failed {
					t.Fatalf("expected success, got %v", fe)
				}
				if body, _ := got.Value(); string(body) != string(tt.env.Body) {
					t.Errorf("body = %q, want %q", body, tt.env.Body)
				}
				return
			}
			if !failed {
				t.Fatalf("expected %s, got success", tt.wantKind)
			}
			if fe.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", fe.Kind, tt.wantKind)
			}
			if fe.StatusCode != tt.wantCode {
				t.Errorf("StatusCode = %d, want %d", fe.StatusCode, tt.wantCode)
			}
		})
	}
}

func TestFiles_FromDecodeError(t *testing.T) {
	cause := errors.New("yaml: bad indent")
	env := domain.Envelope{Body: []byte("a:\n b"), Metadata: &domain.FileMetadata{Path: "/srv/a.yaml"}}

	fe := NewFiles(Default()).FromDecodeError(cause, env)
	if fe.Kind != domain.KindDecodeFailure || !errors.Is(fe, cause) {
		t.Errorf("FromDecodeError() = %+v", fe)
	}
	if string(fe.Body()) != "a:\n b" {
		t.Errorf("Body() = %q", fe.Body())
	}
}
