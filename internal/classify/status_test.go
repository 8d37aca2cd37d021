package classify

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
)

func httpMeta(code int) *domain.HTTPMetadata {
	return &domain.HTTPMetadata{StatusCode: code}
}

func TestStatus_Extract(t *testing.T) {
	var typedNil *domain.HTTPMetadata
	transportErr := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		env      domain.Envelope
		wantKind domain.ErrorKind // empty means success
		wantCode int
	}{
		{
			name:     "no metadata, no body",
			env:      domain.Envelope{},
			wantKind: domain.KindTransportFailure,
		},
		{
			name:     "no metadata with body",
			env:      domain.Envelope{Body: []byte(`{"id":1}`)},
			wantKind: domain.KindTransportFailure,
		},
		{
			name:     "no metadata with transport error",
			env:      domain.Envelope{Err: transportErr},
			wantKind: domain.KindTransportFailure,
		},
		{
			name:     "typed nil metadata",
			env:      domain.Envelope{Body: []byte("x"), Metadata: typedNil},
			wantKind: domain.KindTransportFailure,
		},
		{
			name:     "non-http metadata",
			env:      domain.Envelope{Body: []byte("x"), Metadata: &domain.FileMetadata{Path: "/tmp/x", ModTime: time.Now()}},
			wantKind: domain.KindTransportFailure,
		},
		{
			name: "200 with body",
			env:  domain.Envelope{Body: []byte(`{"id":1}`), Metadata: httpMeta(200)},
		},
		{
			name: "299 with empty body",
			env:  domain.Envelope{Body: []byte{}, Metadata: httpMeta(299)},
		},
		{
			name:     "204 without body",
			env:      domain.Envelope{Metadata: httpMeta(204)},
			wantKind: domain.KindNoBody,
			wantCode: 204,
		},
		{
			name:     "404 with body",
			env:      domain.Envelope{Body: []byte(`{"msg":"gone"}`), Metadata: httpMeta(404)},
			wantKind: domain.KindHTTPStatus,
			wantCode: 404,
		},
		{
			name:     "500 without body",
			env:      domain.Envelope{Metadata: httpMeta(500)},
			wantKind: domain.KindHTTPStatus,
			wantCode: 500,
		},
		{
			name:     "199 just below range",
			env:      domain.Envelope{Body: []byte("x"), Metadata: httpMeta(199)},
			wantKind: domain.KindHTTPStatus,
			wantCode: 199,
		},
		{
			name:     "300 just above range",
			env:      domain.Envelope{Body: []byte("x"), Metadata: httpMeta(300)},
			wantKind: domain.KindHTTPStatus,
			wantCode: 300,
		},
		{
			name: "200 with body and transport error",
			env:  domain.Envelope{Body: []byte("partial"), Metadata: httpMeta(200), Err: io.ErrUnexpectedEOF},
		},
	}

	c := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.Extract(tt.env)

			if tt.wantKind == "" {
				body, ok := out.Value()
				if !ok {
					fe, _ := out.Err()
					t.Fatalf("expected success, got %v", fe)
				}
				if string(body) != string(tt.env.Body) {
					t.Errorf("body = %q, want %q", body, tt.env.Body)
				}
				return
			}

			fe, failed := out.Err()
			if !failed {
				t.Fatalf("expected %s, got success", tt.wantKind)
			}
			if fe.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", fe.Kind, tt.wantKind)
			}
			if fe.StatusCode != tt.wantCode {
				t.Errorf("StatusCode = %d, want %d", fe.StatusCode, tt.wantCode)
			}
			if fe.Envelope.Metadata != tt.env.Metadata || fe.Envelope.Err != tt.env.Err {
				t.Error("envelope was not carried unchanged")
			}
		})
	}
}

func TestStatus_TransportFailureCarriesCause(t *testing.T) {
	cause := errors.New("no route to host")
	out := Default().Extract(domain.Envelope{Err: cause})

	fe, _ := out.Err()
	if !errors.Is(fe, cause) {
		t.Errorf("expected cause %v to be wrapped, got %v", cause, fe.Cause)
	}
}

func TestStatus_CustomRange(t *testing.T) {
	c, err := New(WithAcceptedRange(200, 404))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if min, max := c.Range(); min != 200 || max != 404 {
		t.Errorf("Range() = %d..%d, want 200..404", min, max)
	}

	out := c.Extract(domain.Envelope{Body: []byte("x"), Metadata: httpMeta(404)})
	if !out.IsSuccess() {
		t.Error("expected 404 to be accepted")
	}

	out = c.Extract(domain.Envelope{Body: []byte("x"), Metadata: httpMeta(405)})
	if fe, _ := out.Err(); fe == nil || fe.Kind != domain.KindHTTPStatus {
		t.Errorf("expected http_status for 405, got %v", fe)
	}
}

func TestNew_InvalidRange(t *testing.T) {
	if _, err := New(WithAcceptedRange(300, 200)); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestStatus_FromDecodeError(t *testing.T) {
	env := domain.Envelope{Body: []byte("{not json"), Metadata: httpMeta(200)}
	cause := errors.New("invalid character 'n'")

	fe := Default().FromDecodeError(cause, env)

	if fe.Kind != domain.KindDecodeFailure {
		t.Errorf("Kind = %s, want decode_failure", fe.Kind)
	}
	if !errors.Is(fe, cause) {
		t.Error("expected decode error to be wrapped")
	}
	if string(fe.Envelope.Body) != "{not json" || fe.Envelope.Metadata != env.Metadata {
		t.Error("expected envelope to be carried unchanged")
	}
}
