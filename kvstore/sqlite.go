// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteStore is the preferred tier: a single kv table in a SQLite database
// under dir. Writes are transactional at the statement level, which is all
// the full-list read-modify-write access pattern of callers needs.
type sqliteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func newSQLiteStore(dir string, logger *slog.Logger) (*sqliteStore, error) {
	if dir == "" {
		return nil, errors.New("no data directory configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, "inspecsync.db")
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	s := &sqliteStore{db: db, logger: logger}
	if !probe(context.Background(), s) {
		db.Close()
		return nil, errors.New("sqlite probe write failed")
	}
	return s, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.logger.Error("sqlite get failed", "key", key, "error", err)
		return "", false
	}
	return value, true
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		s.logger.Error("sqlite set failed", "key", key, "error", err)
	}
}

func (s *sqliteStore) Remove(ctx context.Context, key string) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		s.logger.Error("sqlite remove failed", "key", key, "error", err)
	}
}

func (s *sqliteStore) Name() string { return "sqlite" }

func (s *sqliteStore) Close() error { return s.db.Close() }
