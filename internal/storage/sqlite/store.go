package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/polyglot-fetch/internal/storage"
)

// Store is a SQLite fetch history.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// New creates a new SQLite store
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			id TEXT PRIMARY KEY,
			request_id TEXT,
			method TEXT NOT NULL,
			url TEXT NOT NULL,
			outcome TEXT NOT NULL,
			status_code INTEGER,
			error TEXT,
			duration_ns INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_created ON fetches(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_outcome ON fetches(outcome)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) SaveFetch(ctx context.Context, rec *storage.FetchRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `INSERT INTO fetches (id, request_id, method, url, outcome, status_code, error, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.RequestID, rec.Method, rec.URL, rec.Outcome,
		rec.StatusCode, rec.Error, int64(rec.Duration), rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save fetch: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, request_id, method, url, outcome, status_code, error, duration_ns, created_at FROM fetches`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*storage.FetchRecord, error) {
	var (
		rec       storage.FetchRecord
		requestID sql.NullString
		status    sql.NullInt64
		errText   sql.NullString
		duration  int64
	)
	if err := row.Scan(&rec.ID, &requestID, &rec.Method, &rec.URL, &rec.Outcome,
		&status, &errText, &duration, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.RequestID = requestID.String
	rec.StatusCode = int(status.Int64)
	rec.Error = errText.String
	rec.Duration = time.Duration(duration)
	return &rec, nil
}

func (s *Store) GetFetch(ctx context.Context, id string) (*storage.FetchRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fetch %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch: %w", err)
	}
	return rec, nil
}

func (s *Store) ListFetches(ctx context.Context, opts storage.ListOptions) ([]*storage.FetchRecord, error) {
	query := selectColumns
	var args []any
	if opts.Outcome != "" {
		query += ` WHERE outcome = ?`
		args = append(args, opts.Outcome)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetches: %w", err)
	}
	defer rows.Close()

	var records []*storage.FetchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
