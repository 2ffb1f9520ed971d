// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
)

// fileStore is the second tier: one file per key under dir/kv. Writes go
// through a temp file plus rename so that a crash mid-write never leaves a
// truncated value behind.
type fileStore struct {
	dir    string
	logger *slog.Logger
}

func newFileStore(dir string, logger *slog.Logger) (*fileStore, error) {
	if dir == "" {
		return nil, errors.New("no data directory configured")
	}
	root := filepath.Join(dir, "kv")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create kv dir: %w", err)
	}

	s := &fileStore{dir: root, logger: logger}
	if !probe(context.Background(), s) {
		return nil, errors.New("file probe write failed")
	}
	return s, nil
}

func (s *fileStore) path(key string) string {
	// Keys are caller-controlled constants, but escape anyway so an odd key
	// can never traverse outside the kv directory.
	return filepath.Join(s.dir, url.PathEscape(key)+".kv")
}

func (s *fileStore) Get(_ context.Context, key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false
	}
	if err != nil {
		s.logger.Error("file get failed", "key", key, "error", err)
		return "", false
	}
	return string(data), true
}

func (s *fileStore) Set(_ context.Context, key, value string) {
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		s.logger.Error("file set failed", "key", key, "error", err)
		return
	}
	if err := os.Rename(tmp, target); err != nil {
		s.logger.Error("file rename failed", "key", key, "error", err)
		os.Remove(tmp)
	}
}

func (s *fileStore) Remove(_ context.Context, key string) {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("file remove failed", "key", key, "error", err)
	}
}

func (s *fileStore) Name() string { return "file" }

func (s *fileStore) Close() error { return nil }
