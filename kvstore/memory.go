// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"context"
	"sync"
)

// memStore is the terminal tier. It cannot fail and does not survive a
// process restart.
type memStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *memStore) Set(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *memStore) Remove(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

func (s *memStore) Name() string { return "memory" }

func (s *memStore) Close() error { return nil }
