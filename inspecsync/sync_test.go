// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSyncTriggerIsEdgeTriggered(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	requests := 0
	c, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		mu.Lock()
		requests++
		mu.Unlock()
		return jsonResponse(201, `{}`), nil
	})

	c.Monitor.SetForcedOffline(true)
	c.Submit(ctx, validRecord())

	c.Start(ctx)

	// false -> true -> false: exactly one drain, on the second transition.
	c.Monitor.SetForcedOffline(true)
	c.Monitor.SetForcedOffline(false)

	mu.Lock()
	afterEdge := requests
	mu.Unlock()
	// Both passes ran once: the sync-queue item and its mirror entry.
	require.Greater(t, afterEdge, 0)

	// Re-broadcasting the online state must not re-run the drain.
	c.Monitor.SetForcedOffline(false)
	c.Monitor.SetForcedOffline(false)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, afterEdge, requests)
}

func TestDrainSyncQueueRemovesOnSuccess(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{}`), nil
	})
	c.Monitor.SetForcedOffline(true)
	c.Submit(ctx, validRecord())
	c.Monitor.SetForcedOffline(false)

	synced, failed := c.DrainSyncQueue(ctx)
	require.Equal(t, 1, synced)
	require.Zero(t, failed)
	require.Empty(t, c.SyncQueue(ctx))
	// The matching pending envelope goes with it.
	require.Empty(t, c.PendingInspections(ctx))
}

func TestDrainSyncQueueLeavesFailuresInPlace(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	fail := true
	c, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return jsonResponse(500, `{}`), nil
		}
		return jsonResponse(200, `{}`), nil
	})

	c.Monitor.SetForcedOffline(true)
	c.Submit(ctx, validRecord())

	other := validRecord()
	other.ExtinguisherID = "EXT2"
	c.Submit(ctx, other)
	c.Monitor.SetForcedOffline(false)

	synced, failed := c.DrainSyncQueue(ctx)
	require.Zero(t, synced)
	require.Equal(t, 2, failed)
	require.Len(t, c.SyncQueue(ctx), 2, "failed items stay for the next transition")
	require.NotEmpty(t, rec.titled("Sync Errors"))

	// Next drain retries the same items; no retry cap applies.
	mu.Lock()
	fail = false
	mu.Unlock()
	synced, failed = c.DrainSyncQueue(ctx)
	require.Equal(t, 2, synced)
	require.Zero(t, failed)
	require.Empty(t, c.SyncQueue(ctx))
}

func TestDrainOfflineQueueConflictIsDiscarded(t *testing.T) {
	ctx := context.Background()

	c, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusConflict, `{}`), nil
	})

	c.Monitor.SetForcedOffline(true)
	c.Submit(ctx, validRecord())
	c.Monitor.SetForcedOffline(false)

	_, failed := c.DrainOfflineQueue(ctx)
	require.Equal(t, 1, failed)
	require.Empty(t, c.State.OfflineQueue(), "conflicted item removed from queue")
	require.NotEmpty(t, rec.titled("Conflict"))

	// A subsequent drain finds nothing to do.
	synced, failed := c.DrainOfflineQueue(ctx)
	require.Zero(t, synced)
	require.Zero(t, failed)
}

func TestDrainOfflineQueueEmitsProgress(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(201, `{}`), nil
	})

	c.Monitor.SetForcedOffline(true)
	first := validRecord()
	c.Submit(ctx, first)
	second := validRecord()
	second.ExtinguisherID = "EXT2"
	second.Date = "2024-01-02"
	c.Submit(ctx, second)
	c.Monitor.SetForcedOffline(false)

	var mu sync.Mutex
	var snapshots []SyncStatus
	c.OnSyncStatus(func(s SyncStatus) {
		mu.Lock()
		snapshots = append(snapshots, s)
		mu.Unlock()
	})

	synced, failed := c.DrainOfflineQueue(ctx)
	require.Equal(t, 2, synced)
	require.Zero(t, failed)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(snapshots), 4)

	start := snapshots[0]
	require.True(t, start.IsSyncing)
	require.Equal(t, 2, start.TotalItems)

	require.Equal(t, 1, snapshots[1].CurrentItem)
	require.Contains(t, snapshots[1].Message, "EXT1")
	require.Equal(t, 2, snapshots[2].CurrentItem)
	require.Contains(t, snapshots[2].Message, "EXT2")

	done := snapshots[len(snapshots)-1]
	require.True(t, done.IsComplete)
	require.False(t, done.IsSyncing)
}

func TestSyncStatusAutoResets(t *testing.T) {
	ctx := context.Background()

	cfg := DefaultConfig(t.TempDir())
	cfg.ResetDelay = 20 * time.Millisecond
	c := New(cfg, testLogger())
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.State.SetAPIHost("10.0.0.5"))
	c.HTTP = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(201, `{}`), nil
	})}

	c.Monitor.SetForcedOffline(true)
	c.Submit(ctx, validRecord())
	c.Monitor.SetForcedOffline(false)

	c.DrainOfflineQueue(ctx)
	require.True(t, c.Status().IsComplete)

	require.Eventually(t, func() bool {
		return c.Status() == SyncStatus{}
	}, time.Second, 5*time.Millisecond, "status should reset to idle after the delay")
}

func TestDrainSkipsWhenQueuesEmpty(t *testing.T) {
	ctx := context.Background()

	c, rec := newTestClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("no requests expected for empty queues")
		return nil, nil
	})

	synced, failed := c.SyncNow(ctx)
	require.Zero(t, synced)
	require.Zero(t, failed)
	require.Empty(t, rec.all(), "no notifications for empty drains")
}
