// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// OutcomeKind classifies what happened to a submitted record.
type OutcomeKind int

const (
	// OutcomeSent means the server confirmed the record with a 2xx.
	OutcomeSent OutcomeKind = iota
	// OutcomeSavedOffline means the record was queued durably for replay.
	OutcomeSavedOffline
	// OutcomeRejected means required fields were missing. Nothing was
	// stored or sent; the caller must not retry automatically.
	OutcomeRejected
	// OutcomeFailed means the server answered with a non-2xx status. The
	// record is queued for replay unless the status was a 409 conflict.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSent:
		return "sent"
	case OutcomeSavedOffline:
		return "saved-offline"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the classified result of Submit. Every submission path
// terminates in exactly one of these.
type Outcome struct {
	Kind OutcomeKind
	// ID is the envelope id assigned when the record entered the durable
	// pending collection.
	ID string
	// Status carries the HTTP status for OutcomeFailed.
	Status int
	// Missing names the absent required fields for OutcomeRejected.
	Missing []string
}

// Submit routes a validated inspection record: a synchronous send when the
// connectivity signal says online, a durable local enqueue otherwise.
// Transport failures without a response path fall back to the offline path.
func (c *Client) Submit(ctx context.Context, rec InspectionRecord) Outcome {
	if missing := rec.MissingFields(c.config.RequirePressure); len(missing) > 0 {
		c.logger.Warn("submission rejected", "missing", missing)
		return Outcome{Kind: OutcomeRejected, Missing: missing}
	}

	if c.Monitor.EffectiveOffline() {
		return c.saveOffline(ctx, rec)
	}

	err := c.postJSON(ctx, inspectionsEndpoint, rec)
	if err == nil {
		c.logger.Info("inspection sent", "extinguisherId", rec.ExtinguisherID)
		return Outcome{Kind: OutcomeSent}
	}

	if IsUnreachable(err) {
		c.logger.Warn("server unreachable, saving inspection locally", "error", err)
		return c.saveOffline(ctx, rec)
	}

	if IsConflict(err) {
		// The server already holds this record. Discard, inform, done.
		c.logger.Warn("inspection already exists on server", "extinguisherId", rec.ExtinguisherID)
		c.notify(LevelWarning, "Conflict",
			fmt.Sprintf("Inspection %s already exists on the server.", rec.ExtinguisherID))
		return Outcome{Kind: OutcomeFailed, Status: HTTPStatus(err)}
	}

	// A real server-side failure. Queue for replay rather than fabricating
	// success; the retry queue owns delivery from here.
	status := HTTPStatus(err)
	c.logger.Error("inspection send failed, queued for retry", "status", status, "error", err)
	raw := c.marshalRecord(&rec)
	id := c.Storage.EnqueueSync(ctx, inspectionsEndpoint, raw)
	return Outcome{Kind: OutcomeFailed, Status: status, ID: id}
}

// saveOffline lands the record in both durable collections and mirrors it
// into the in-memory queue. The mirror dedupes on extinguisher id + date;
// the durable collections intentionally do not.
func (c *Client) saveOffline(ctx context.Context, rec InspectionRecord) Outcome {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	raw := c.marshalRecord(&rec)
	id := c.Storage.SavePendingInspection(ctx, raw)
	c.Storage.EnqueueSync(ctx, inspectionsEndpoint, raw)
	c.State.AddToOfflineQueue(rec)

	c.notify(LevelInfo, "Saved Locally",
		fmt.Sprintf("Inspection %s will sync when you are back online.", rec.ExtinguisherID))

	return Outcome{Kind: OutcomeSavedOffline, ID: id}
}

func (c *Client) marshalRecord(rec *InspectionRecord) json.RawMessage {
	raw, err := json.Marshal(rec)
	if err != nil {
		// Records are plain structs; this cannot realistically fail.
		c.logger.Error("marshal inspection failed", "error", err)
		return json.RawMessage(`{}`)
	}
	return raw
}
