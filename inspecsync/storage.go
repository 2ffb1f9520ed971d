// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/daemang7/inspecsync/kvstore"
)

// Stable keys for the two durable collections. Each one holds a JSON array
// of envelopes so the stored layout round-trips with older clients.
const (
	pendingKey   = "offline_inspections"
	syncQueueKey = "offline_sync_queue"
)

// Storage owns the two durable, append-only collections: pending
// inspections and the sync queue. Every mutation is a full read-modify-write
// of the collection, so each collection carries its own mutex to keep
// concurrent callers from losing appends.
type Storage struct {
	store  kvstore.Store
	logger *slog.Logger

	pendingMu sync.Mutex
	queueMu   sync.Mutex
}

// NewStorage wraps a durable store. A nil logger defaults to slog.Default().
func NewStorage(store kvstore.Store, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{store: store, logger: logger}
}

// SavePendingInspection appends an unsynced envelope around data and returns
// the generated envelope id.
func (s *Storage) SavePendingInspection(ctx context.Context, data json.RawMessage) string {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	envelope := OfflineInspection{
		ID:        newQueueID("offline"),
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		Synced:    false,
	}

	list := s.readPending(ctx)
	list = append(list, envelope)
	s.writeJSON(ctx, pendingKey, list)

	s.logger.Debug("saved pending inspection", "id", envelope.ID, "total", len(list))
	return envelope.ID
}

// PendingInspections returns the full pending collection in insertion order.
// Read or parse failures yield an empty slice, never an error.
func (s *Storage) PendingInspections(ctx context.Context) []OfflineInspection {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return s.readPending(ctx)
}

// RemovePendingInspection filters id out of the pending collection.
func (s *Storage) RemovePendingInspection(ctx context.Context, id string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	list := s.readPending(ctx)
	filtered := list[:0]
	for _, env := range list {
		if env.ID != id {
			filtered = append(filtered, env)
		}
	}
	s.writeJSON(ctx, pendingKey, filtered)
}

// EnqueueSync appends a queue item carrying endpoint and payload and returns
// the generated item id.
func (s *Storage) EnqueueSync(ctx context.Context, endpoint string, data json.RawMessage) string {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	item := SyncQueueItem{
		ID:        newQueueID("sync"),
		Endpoint:  endpoint,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}

	queue := s.readQueue(ctx)
	queue = append(queue, item)
	s.writeJSON(ctx, syncQueueKey, queue)

	s.logger.Debug("enqueued sync item", "id", item.ID, "endpoint", endpoint, "total", len(queue))
	return item.ID
}

// SyncQueue returns the full sync queue in insertion order.
func (s *Storage) SyncQueue(ctx context.Context) []SyncQueueItem {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	return s.readQueue(ctx)
}

// RemoveFromSyncQueue filters id out of the sync queue, preserving the
// relative order of the remaining items.
func (s *Storage) RemoveFromSyncQueue(ctx context.Context, id string) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	queue := s.readQueue(ctx)
	filtered := queue[:0]
	for _, item := range queue {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	s.writeJSON(ctx, syncQueueKey, filtered)
}

// Counts reports the sizes of both collections.
func (s *Storage) Counts(ctx context.Context) (inspections, queued int) {
	return len(s.PendingInspections(ctx)), len(s.SyncQueue(ctx))
}

// ClearAll empties both collections. Used for explicit resets only.
func (s *Storage) ClearAll(ctx context.Context) {
	s.pendingMu.Lock()
	s.store.Remove(ctx, pendingKey)
	s.pendingMu.Unlock()

	s.queueMu.Lock()
	s.store.Remove(ctx, syncQueueKey)
	s.queueMu.Unlock()

	s.logger.Info("cleared all offline data")
}

func (s *Storage) readPending(ctx context.Context) []OfflineInspection {
	raw, ok := s.store.Get(ctx, pendingKey)
	if !ok {
		return []OfflineInspection{}
	}
	var list []OfflineInspection
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Error("corrupt pending collection, treating as empty", "error", err)
		return []OfflineInspection{}
	}
	return list
}

func (s *Storage) readQueue(ctx context.Context) []SyncQueueItem {
	raw, ok := s.store.Get(ctx, syncQueueKey)
	if !ok {
		return []SyncQueueItem{}
	}
	var queue []SyncQueueItem
	if err := json.Unmarshal([]byte(raw), &queue); err != nil {
		s.logger.Error("corrupt sync queue, treating as empty", "error", err)
		return []SyncQueueItem{}
	}
	return queue
}

func (s *Storage) writeJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("marshal collection failed", "key", key, "error", err)
		return
	}
	s.store.Set(ctx, key, string(data))
}
