// Package history records delivered fetch outcomes.
package history

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/polyglot-fetch/internal/core/domain"
	"github.com/tjfontaine/polyglot-fetch/internal/request"
	"github.com/tjfontaine/polyglot-fetch/internal/storage"
)

const persistTimeout = 5 * time.Second

// OutcomeCounter counts outcomes by kind.
type OutcomeCounter interface {
	ObserveOutcome(kind string)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithStore persists a record for every observed outcome.
func WithStore(store storage.Store) Option {
	return func(r *Recorder) {
		r.store = store
	}
}

// WithOutcomeCounter counts every observed outcome.
func WithOutcomeCounter(c OutcomeCounter) Option {
	return func(r *Recorder) {
		r.counter = c
	}
}

// WithLogger sets the logger for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// Recorder turns delivered outcomes into FetchRecords.
type Recorder struct {
	store   storage.Store
	counter OutcomeCounter
	logger  *slog.Logger
	now     func() time.Time
}

// NewRecorder creates a recorder. With no options it only measures.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Observe wraps callback so the outcome is recorded before callback runs.
// The clock starts when Observe is called, so call it right before Fetch.
func Observe[T any, E error](r *Recorder, req *http.Request, callback func(domain.Outcome[T, E])) func(domain.Outcome[T, E]) {
	started := r.now()
	method, url := req.Method, ""
	if req.URL != nil {
		url = req.URL.String()
	}
	requestID := req.Header.Get(request.RequestIDHeader)

	return func(o domain.Outcome[T, E]) {
		rec := &storage.FetchRecord{
			ID:        "fetch_" + uuid.New().String(),
			RequestID: requestID,
			Method:    method,
			URL:       url,
			Outcome:   storage.OutcomeSuccess,
			Duration:  r.now().Sub(started),
			CreatedAt: r.now(),
		}
		if e, failed := o.Err(); failed {
			describe(rec, e)
		}
		r.record(rec)
		callback(o)
	}
}

func describe(rec *storage.FetchRecord, err error) {
	rec.Outcome = "error"
	rec.Error = err.Error()

	var fe *domain.FetchError
	if errors.As(err, &fe) {
		rec.Outcome = string(fe.Kind)
		rec.StatusCode = fe.StatusCode
	}
}

func (r *Recorder) record(rec *storage.FetchRecord) {
	if r.counter != nil {
		r.counter.ObserveOutcome(rec.Outcome)
	}
	if r.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.store.SaveFetch(ctx, rec); err != nil {
		r.logger.Error("failed to save fetch record",
			slog.String("id", rec.ID),
			slog.String("url", rec.URL),
			slog.String("error", err.Error()),
		)
	}
}
