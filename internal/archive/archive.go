// Package archive persists raw graph snapshots in sqlite, keyed by
// idempotency key. Only raw snapshots are stored; built indexes are
// never persisted and are rebuilt from the archived snapshot on demand.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeatlas/internal/graph"
	"codeatlas/util"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key       TEXT PRIMARY KEY,
	payload   BLOB NOT NULL,
	digest    TEXT NOT NULL,
	saved_at  INTEGER NOT NULL
);
`

// Store is a sqlite-backed snapshot archive.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the archive database at path.
// Use ":memory:" for an ephemeral archive.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a snapshot under the given key, replacing any previous
// snapshot for that key.
func (s *Store) Save(ctx context.Context, key string, snap *graph.Snapshot) error {
	if key == "" {
		return fmt.Errorf("empty archive key")
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (key, payload, digest, saved_at) VALUES (?, ?, ?, ?)`,
		key, payload, util.Digest(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot archived under key, or (nil, nil) if none is.
func (s *Store) Load(ctx context.Context, key string) (*graph.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap graph.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode archived snapshot: %w", err)
	}
	return &snap, nil
}

// Keys lists the archived keys, most recently saved first.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM snapshots ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshot keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
