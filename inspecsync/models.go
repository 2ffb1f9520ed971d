// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Condition is the inspected state of a piece of equipment.
type Condition string

const (
	ConditionExcellent        Condition = "excellent"
	ConditionGood             Condition = "good"
	ConditionFair             Condition = "fair"
	ConditionPoor             Condition = "poor"
	ConditionNeedsReplacement Condition = "needs-replacement"
)

// IsValid reports whether c is a recognized condition value.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionNeedsReplacement:
		return true
	}
	return false
}

func (c Condition) String() string { return string(c) }

// InspectionRecord is the domain entity a user produces. IDs are assigned
// locally (uuid) when the record is created offline; otherwise the server
// assigns one on creation.
type InspectionRecord struct {
	ID             string    `json:"id,omitempty"`
	ExtinguisherID string    `json:"extinguisherId"`
	Location       string    `json:"location"`
	Condition      Condition `json:"condition"`
	InspectedBy    string    `json:"inspectedBy"`
	Date           string    `json:"date"`
	Pressure       string    `json:"pressure,omitempty"`
	Description    string    `json:"description,omitempty"`
	PhotoURL       string    `json:"photoUrl,omitempty"`
}

// MissingFields returns the names of required fields that are empty.
// InspectedBy, ExtinguisherID and Location gate submission; Pressure is
// appended only when requirePressure is set (stricter queue-entry policy).
func (r InspectionRecord) MissingFields(requirePressure bool) []string {
	var missing []string
	if r.InspectedBy == "" {
		missing = append(missing, "inspectedBy")
	}
	if r.ExtinguisherID == "" {
		missing = append(missing, "extinguisherId")
	}
	if r.Location == "" {
		missing = append(missing, "location")
	}
	if requirePressure && r.Pressure == "" {
		missing = append(missing, "pressure")
	}
	return missing
}

// Submittable reports whether the record satisfies the form-level required
// fields.
func (r InspectionRecord) Submittable() bool {
	return len(r.MissingFields(false)) == 0
}

// DedupKey identifies a logically-identical submission for the in-memory
// mirror queue.
func (r InspectionRecord) DedupKey() string {
	return r.ExtinguisherID + "|" + r.Date
}

// SyncQueueItem wraps a destination and payload pending transmission. Items
// are created when a submission cannot be delivered and destroyed on
// successful replay or on a confirmed server conflict.
type SyncQueueItem struct {
	ID        string          `json:"id"`
	Endpoint  string          `json:"endpoint"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// OfflineInspection wraps a raw inspection payload in the durable pending
// collection. Synced is kept for stored-layout compatibility but is never
// flipped: successful replay removes the envelope instead.
type OfflineInspection struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Synced    bool            `json:"synced"`
}

// SyncStatus is the transient progress snapshot consumed by a UI indicator.
type SyncStatus struct {
	IsSyncing   bool   `json:"isSyncing"`
	IsComplete  bool   `json:"isComplete"`
	CurrentItem int    `json:"currentItem"`
	TotalItems  int    `json:"totalItems"`
	Message     string `json:"message"`
}

// newQueueID builds a time-prefixed unique id so that lexicographic and
// insertion order stay aligned for queue items.
func newQueueID(prefix string) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}
