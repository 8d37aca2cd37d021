package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tjfontaine/polyglot-fetch/internal/storage"
)

// Store is an in-memory fetch history.
type Store struct {
	mu      sync.RWMutex
	records map[string]*storage.FetchRecord
}

var _ storage.Store = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		records: make(map[string]*storage.FetchRecord),
	}
}

func (s *Store) SaveFetch(ctx context.Context, rec *storage.FetchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("fetch %s already exists", rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	stored := *rec
	s.records[rec.ID] = &stored
	return nil
}

func (s *Store) GetFetch(ctx context.Context, id string) (*storage.FetchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[id]
	if !exists {
		return nil, fmt.Errorf("fetch %s: %w", id, storage.ErrNotFound)
	}

	out := *rec
	return &out, nil
}

func (s *Store) ListFetches(ctx context.Context, opts storage.ListOptions) ([]*storage.FetchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*storage.FetchRecord
	for _, rec := range s.records {
		if opts.Outcome != "" && rec.Outcome != opts.Outcome {
			continue
		}
		out := *rec
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return nil, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result, nil
}

func (s *Store) Close() error {
	return nil
}
