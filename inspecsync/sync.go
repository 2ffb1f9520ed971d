// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// onConnectivityChange is the sync trigger. It is edge-triggered: a drain
// runs only when effective-offline transitions from true to false, never
// merely because the signal is re-broadcast while already online.
func (c *Client) onConnectivityChange(ctx context.Context, offline bool) {
	c.stateMu.Lock()
	wasOffline := c.wasOffline
	c.wasOffline = offline
	c.stateMu.Unlock()

	if offline || !wasOffline {
		return
	}

	c.logger.Info("connectivity restored, draining offline queues")
	c.DrainSyncQueue(ctx)
	c.DrainOfflineQueue(ctx)
}

// DrainSyncQueue replays the durable sync queue FIFO over a snapshot of the
// items present when the drain starts. Successes and confirmed conflicts
// are removed; anything else stays for the next online transition — there is
// no retry cap.
func (c *Client) DrainSyncQueue(ctx context.Context) (synced, failed int) {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	queue := c.Storage.SyncQueue(ctx)
	if len(queue) == 0 {
		return 0, 0
	}

	c.logger.Info("syncing queued requests", "count", len(queue))

	for _, item := range queue {
		err := c.postJSON(ctx, item.Endpoint, item.Data)
		switch {
		case err == nil:
			c.Storage.RemoveFromSyncQueue(ctx, item.ID)
			c.removePendingByPayload(ctx, item.Data)
			synced++
			c.logger.Debug("synced queue item", "id", item.ID, "endpoint", item.Endpoint)
		case IsConflict(err):
			// Already applied on the server. Keeping it would retry forever.
			c.Storage.RemoveFromSyncQueue(ctx, item.ID)
			c.removePendingByPayload(ctx, item.Data)
			failed++
			c.logger.Warn("queue item conflicted, discarding", "id", item.ID)
		default:
			failed++
			c.logger.Error("queue item sync failed, will retry", "id", item.ID, "error", err)
		}
	}

	c.summarize("Sync", synced, failed)
	return synced, failed
}

// DrainOfflineQueue replays the in-memory mirror queue FIFO, emitting
// progress events for the UI indicator. Successes are removed; a 409 is
// removed anyway and surfaced as a conflict; other failures stay queued.
func (c *Client) DrainOfflineQueue(ctx context.Context) (synced, failed int) {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	queue := c.State.OfflineQueue()
	if len(queue) == 0 {
		return 0, 0
	}

	c.logger.Info("syncing offline inspections", "count", len(queue))
	c.setStatus(SyncStatus{IsSyncing: true, TotalItems: len(queue), Message: "Starting sync..."})

	for i, rec := range queue {
		c.updateStatus(i+1, fmt.Sprintf("Syncing %s...", rec.ExtinguisherID))

		err := c.postJSON(ctx, inspectionsEndpoint, rec)
		switch {
		case err == nil:
			c.State.RemoveFromOfflineQueue(rec.ID)
			synced++
			c.logger.Debug("synced offline inspection", "id", rec.ID, "extinguisherId", rec.ExtinguisherID)
		case IsConflict(err):
			c.State.RemoveFromOfflineQueue(rec.ID)
			failed++
			c.logger.Warn("offline inspection conflicted, discarding", "id", rec.ID)
			c.notify(LevelWarning, "Conflict",
				fmt.Sprintf("Inspection %s already exists. Removed from queue.", rec.ExtinguisherID))
		default:
			failed++
			c.logger.Error("offline inspection sync failed, will retry", "id", rec.ID, "error", err)
		}
	}

	c.completeStatus()
	c.summarize("Offline Queue Sync", synced, failed)
	return synced, failed
}

// removePendingByPayload clears the durable pending envelope that carries
// the same payload a delivered queue item did, so the two collections empty
// together after a successful replay.
func (c *Client) removePendingByPayload(ctx context.Context, payload json.RawMessage) {
	var delivered InspectionRecord
	if err := json.Unmarshal(payload, &delivered); err != nil || delivered.ID == "" {
		return
	}
	for _, env := range c.Storage.PendingInspections(ctx) {
		var rec InspectionRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			continue
		}
		if rec.ID == delivered.ID {
			c.Storage.RemovePendingInspection(ctx, env.ID)
			return
		}
	}
}

// summarize fires the aggregate notifications for a finished drain pass: one
// success summary when anything synced, one retry-later warning when
// anything failed.
func (c *Client) summarize(label string, synced, failed int) {
	if synced > 0 {
		msg := fmt.Sprintf("Successfully synced %d items", synced)
		if failed > 0 {
			msg += fmt.Sprintf(", %d failed", failed)
		}
		c.notify(LevelSuccess, label+" Complete", msg)
	}
	if failed > 0 {
		c.notify(LevelWarning, label+" Errors",
			fmt.Sprintf("%d items failed to sync. They will be retried later.", failed))
	}
}

// SyncNow runs both drain passes immediately, regardless of edge state.
func (c *Client) SyncNow(ctx context.Context) (synced, failed int) {
	s1, f1 := c.DrainSyncQueue(ctx)
	s2, f2 := c.DrainOfflineQueue(ctx)
	return s1 + s2, f1 + f2
}

// Status returns the current sync progress snapshot.
func (c *Client) Status() SyncStatus {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.status
}

func (c *Client) setStatus(s SyncStatus) {
	c.stateMu.Lock()
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	c.status = s
	fn := c.statusFn
	c.stateMu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func (c *Client) updateStatus(current int, message string) {
	c.stateMu.Lock()
	c.status.CurrentItem = current
	c.status.Message = message
	s := c.status
	fn := c.statusFn
	c.stateMu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// completeStatus flips the status to complete and schedules the reset back
// to idle so a transient UI indicator can show the finished state briefly.
func (c *Client) completeStatus() {
	c.stateMu.Lock()
	c.status = SyncStatus{IsComplete: true}
	s := c.status
	fn := c.statusFn
	c.resetTimer = time.AfterFunc(c.config.ResetDelay, func() {
		c.setStatus(SyncStatus{})
	})
	c.stateMu.Unlock()
	if fn != nil {
		fn(s)
	}
}
