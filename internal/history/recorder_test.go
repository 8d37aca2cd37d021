package history

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/request"
	"github.com/tjfontaine/polyglot-fetch/internal/storage"
	"github.com/tjfontaine/polyglot-fetch/internal/storage/memory"
)

type countingCounter struct {
	mu    sync.Mutex
	kinds []string
}

func (c *countingCounter) ObserveOutcome(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kinds = append(c.kinds, kind)
}

type failingStore struct {
	storage.Store
}

func (failingStore) SaveFetch(context.Context, *storage.FetchRecord) error {
	return errors.New("disk full")
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://api.example.test/items/1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(request.RequestIDHeader, "req-9")
	return req
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestObserve(t *testing.T) {
	tests := []struct {
		name        string
		outcome     domain.Outcome[string, error]
		wantOutcome string
		wantStatus  int
		wantErr     string
	}{
		{
			name:        "success",
			outcome:     domain.Success[string, error]("ok"),
			wantOutcome: storage.OutcomeSuccess,
		},
		{
			name:        "fetch error",
			outcome:     domain.Failure[string, error](domain.ErrHTTPStatus(404, domain.Envelope{})),
			wantOutcome: "http_status",
			wantStatus:  404,
			wantErr:     "http_status: status 404",
		},
		{
			name:        "other error",
			outcome:     domain.Failure[string, error](errors.New("custom")),
			wantOutcome: "error",
			wantErr:     "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			counter := &countingCounter{}
			r := NewRecorder(WithStore(store), WithOutcomeCounter(counter))
			r.now = steppingClock(10 * time.Millisecond)

			called := 0
			cb := Observe(r, newRequest(t), func(o domain.Outcome[string, error]) { called++ })
			cb(tt.outcome)

			if called != 1 {
				t.Fatalf("callback called %d times, want 1", called)
			}

			recs, err := store.ListFetches(context.Background(), storage.ListOptions{})
			if err != nil || len(recs) != 1 {
				t.Fatalf("ListFetches() = %d records, %v", len(recs), err)
			}
			rec := recs[0]
			if !strings.HasPrefix(rec.ID, "fetch_") {
				t.Errorf("ID = %q", rec.ID)
			}
			if rec.Outcome != tt.wantOutcome || rec.StatusCode != tt.wantStatus || rec.Error != tt.wantErr {
				t.Errorf("record = %+v", rec)
			}
			if rec.Method != http.MethodGet || rec.URL != "https://api.example.test/items/1" || rec.RequestID != "req-9" {
				t.Errorf("request fields = %s %s %s", rec.Method, rec.URL, rec.RequestID)
			}
			if rec.Duration != 10*time.Millisecond {
				t.Errorf("Duration = %v, want 10ms", rec.Duration)
			}
			if len(counter.kinds) != 1 || counter.kinds[0] != tt.wantOutcome {
				t.Errorf("counted %v", counter.kinds)
			}
		})
	}
}

func TestObserve_StoreFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(
		WithStore(failingStore{}),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	called := false
	cb := Observe(r, newRequest(t), func(domain.Outcome[int, error]) { called = true })
	cb(domain.Success[int, error](1))

	if !called {
		t.Error("callback must run even when persistence fails")
	}
	if !strings.Contains(buf.String(), "failed to save fetch record") {
		t.Errorf("expected a logged failure, got %q", buf.String())
	}
}

func TestObserve_NoStore(t *testing.T) {
	counter := &countingCounter{}
	r := NewRecorder(WithOutcomeCounter(counter))

	cb := Observe(r, newRequest(t), func(domain.Outcome[int, error]) {})
	cb(domain.Success[int, error](1))

	if len(counter.kinds) != 1 {
		t.Errorf("counted %d outcomes, want 1", len(counter.kinds))
	}
}

func TestObserve_RequestWithoutURL(t *testing.T) {
	store := memory.New()
	r := NewRecorder(WithStore(store))

	cb := Observe(r, &http.Request{Method: http.MethodGet}, func(domain.Outcome[int, error]) {})
	cb(domain.Success[int, error](1))

	recs, err := store.ListFetches(context.Background(), storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListFetches() error = %v", err)
	}
	if len(recs) != 1 || recs[0].URL != "" || recs[0].Method != http.MethodGet {
		t.Errorf("records = %+v", recs)
	}
}
