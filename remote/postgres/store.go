// Package postgres is a remote.DocumentStore on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/budget/remote"
	_ "github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	path       text PRIMARY KEY,
	data       jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// Store keeps documents in the "documents" table.
type Store struct {
	db *sql.DB
}

var _ remote.DocumentStore = (*Store)(nil)

// Open connects to dsn and creates the table if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New uses an open database.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	const query = `SELECT data FROM documents WHERE path = $1`
	var data []byte
	err := s.db.QueryRowContext(ctx, query, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, remote.ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, path string, doc []byte) error {
	const query = `INSERT INTO documents (path, data, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, query, path, string(doc))
	return err
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
