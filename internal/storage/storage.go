// Package storage defines the fetch history store.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// OutcomeSuccess marks a record whose fetch delivered a value.
const OutcomeSuccess = "success"

// FetchRecord is one delivered fetch outcome.
type FetchRecord struct {
	ID         string        `json:"id" yaml:"id"`
	RequestID  string        `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Method     string        `json:"method" yaml:"method"`
	URL        string        `json:"url" yaml:"url"`
	Outcome    string        `json:"outcome" yaml:"outcome"` // success or an error kind
	StatusCode int           `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	CreatedAt  time.Time     `json:"created_at" yaml:"created_at"`
}

// ListOptions filters ListFetches. Records come back newest first.
type ListOptions struct {
	Outcome string
	Limit   int
	Offset  int
}

// Store persists fetch records.
type Store interface {
	SaveFetch(ctx context.Context, rec *FetchRecord) error
	GetFetch(ctx context.Context, id string) (*FetchRecord, error)
	ListFetches(ctx context.Context, opts ListOptions) ([]*FetchRecord, error)
	Close() error
}
