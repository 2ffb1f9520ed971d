// Package kvstore provides durable key-value storage with an ordered
// fallback chain: SQLite, then plain files, then an in-process map.
//
// Callers never see storage errors. Every operation resolves to a safe
// default (missing value, silent no-op) and failures are logged instead.
// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"context"
	"log/slog"
)

// Store is an error-free key-value contract over opaque string blobs.
type Store interface {
	// Get returns the stored value and true, or ("", false) when the key is
	// absent or the backend failed.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key. Failures are logged and swallowed.
	Set(ctx context.Context, key, value string)

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string)

	// Name identifies the active tier ("sqlite", "file" or "memory").
	Name() string

	// Close releases backend resources. Safe to call on any tier.
	Close() error
}

// probeKey is written and deleted once per tier during selection to confirm
// the backend actually accepts writes, not merely that it opened.
const probeKey = "__kvstore_probe__"

// Open selects the first usable storage tier rooted at dir. The selection is
// made once per call; callers are expected to hold on to the returned Store
// for the lifetime of the process. Open never fails: the in-memory tier is
// the terminal fallback and always succeeds.
func Open(dir string, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}

	if s, err := newSQLiteStore(dir, logger); err == nil {
		logger.Debug("kvstore tier selected", "tier", s.Name(), "dir", dir)
		return s
	} else {
		logger.Warn("sqlite store unavailable, falling back", "dir", dir, "error", err)
	}

	if s, err := newFileStore(dir, logger); err == nil {
		logger.Debug("kvstore tier selected", "tier", s.Name(), "dir", dir)
		return s
	} else {
		logger.Warn("file store unavailable, falling back", "dir", dir, "error", err)
	}

	// Values kept here do not survive a restart. Preferable to crashing.
	logger.Warn("all durable tiers unavailable, using in-memory store", "dir", dir)
	return newMemStore()
}

// probe performs a real write, read-back and delete of a sentinel key.
// Feature detection alone is not enough: a backend can open fine and still
// reject writes (quota, read-only mount, disabled storage).
func probe(ctx context.Context, s Store) bool {
	s.Set(ctx, probeKey, "ok")
	v, found := s.Get(ctx, probeKey)
	if !found || v != "ok" {
		return false
	}
	s.Remove(ctx, probeKey)
	_, found = s.Get(ctx, probeKey)
	return !found
}
