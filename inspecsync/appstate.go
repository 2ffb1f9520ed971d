// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

var ipv4Pattern = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)

// ValidHostIP reports whether ip is a well-formed dotted-quad IPv4 address.
func ValidHostIP(ip string) bool {
	return ipv4Pattern.MatchString(ip)
}

// AppState is the in-memory mirror the UI boundary reads: the configured
// server address, the offline mirror queue the sync engine drains, and a
// local cache of inspections. All reads return copies.
type AppState struct {
	mu           sync.RWMutex
	apiHost      string
	offlineQueue []InspectionRecord
	inspections  []InspectionRecord
	logger       *slog.Logger
}

// NewAppState returns an empty state. A nil logger defaults to slog.Default().
func NewAppState(logger *slog.Logger) *AppState {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppState{logger: logger}
}

// SetAPIHost stores the server IPv4 address. Malformed input returns
// ErrInvalidHost and leaves the previous value untouched.
func (a *AppState) SetAPIHost(ip string) error {
	ip = strings.TrimSpace(ip)
	if !ValidHostIP(ip) {
		a.logger.Warn("rejected invalid server address", "host", ip)
		return ErrInvalidHost
	}
	a.mu.Lock()
	a.apiHost = ip
	a.mu.Unlock()
	a.logger.Info("server address configured", "host", ip)
	return nil
}

// APIHost returns the configured server address, or "" when unset.
func (a *AppState) APIHost() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.apiHost
}

// AddToOfflineQueue appends rec to the mirror queue unless a record with the
// same extinguisher id and date is already queued. It reports whether the
// record was added.
func (a *AppState) AddToOfflineQueue(rec InspectionRecord) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, queued := range a.offlineQueue {
		if queued.DedupKey() == rec.DedupKey() {
			a.logger.Debug("duplicate submission ignored in mirror queue",
				"extinguisherId", rec.ExtinguisherID, "date", rec.Date)
			return false
		}
	}
	a.offlineQueue = append(a.offlineQueue, rec)
	return true
}

// OfflineQueue returns a copy of the mirror queue in insertion order.
func (a *AppState) OfflineQueue() []InspectionRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]InspectionRecord, len(a.offlineQueue))
	copy(out, a.offlineQueue)
	return out
}

// RemoveFromOfflineQueue drops the record with the given id.
func (a *AppState) RemoveFromOfflineQueue(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	filtered := a.offlineQueue[:0]
	for _, rec := range a.offlineQueue {
		if rec.ID != id {
			filtered = append(filtered, rec)
		}
	}
	a.offlineQueue = filtered
}

// ClearOfflineQueue empties the mirror queue.
func (a *AppState) ClearOfflineQueue() {
	a.mu.Lock()
	a.offlineQueue = nil
	a.mu.Unlock()
}

// AddInspection appends rec to the local inspection cache.
func (a *AppState) AddInspection(rec InspectionRecord) {
	a.mu.Lock()
	a.inspections = append(a.inspections, rec)
	a.mu.Unlock()
}

// UpdateInspection replaces the cached record with the same id. It reports
// whether a record was found.
func (a *AppState) UpdateInspection(rec InspectionRecord) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.inspections {
		if a.inspections[i].ID == rec.ID {
			a.inspections[i] = rec
			return true
		}
	}
	return false
}

// DeleteInspection drops the cached record with the given id.
func (a *AppState) DeleteInspection(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	filtered := a.inspections[:0]
	for _, rec := range a.inspections {
		if rec.ID != id {
			filtered = append(filtered, rec)
		}
	}
	a.inspections = filtered
}

// Inspection looks up a cached record by id.
func (a *AppState) Inspection(id string) (InspectionRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, rec := range a.inspections {
		if rec.ID == id {
			return rec, true
		}
	}
	return InspectionRecord{}, false
}

// Inspections returns a copy of the cached records.
func (a *AppState) Inspections() []InspectionRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]InspectionRecord, len(a.inspections))
	copy(out, a.inspections)
	return out
}

// InspectionsByLocation filters the cache by a case-insensitive location
// substring match.
func (a *AppState) InspectionsByLocation(location string) []InspectionRecord {
	needle := strings.ToLower(location)
	var out []InspectionRecord
	for _, rec := range a.Inspections() {
		if strings.Contains(strings.ToLower(rec.Location), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// InspectionsByCondition filters the cache by exact condition.
func (a *AppState) InspectionsByCondition(c Condition) []InspectionRecord {
	var out []InspectionRecord
	for _, rec := range a.Inspections() {
		if rec.Condition == c {
			out = append(out, rec)
		}
	}
	return out
}

// SearchInspections matches query against extinguisher id, location,
// inspector and description, case-insensitively.
func (a *AppState) SearchInspections(query string) []InspectionRecord {
	needle := strings.ToLower(query)
	var out []InspectionRecord
	for _, rec := range a.Inspections() {
		haystack := strings.ToLower(strings.Join([]string{
			rec.ExtinguisherID, rec.Location, rec.InspectedBy, rec.Description,
		}, "\n"))
		if strings.Contains(haystack, needle) {
			out = append(out, rec)
		}
	}
	return out
}

// InspectionStats summarizes the cached records.
type InspectionStats struct {
	Total       int
	ByCondition map[Condition]int
	ByLocation  map[string]int
}

// Stats aggregates counts over the cached inspections.
func (a *AppState) Stats() InspectionStats {
	stats := InspectionStats{
		ByCondition: make(map[Condition]int),
		ByLocation:  make(map[string]int),
	}
	for _, rec := range a.Inspections() {
		stats.Total++
		stats.ByCondition[rec.Condition]++
		stats.ByLocation[rec.Location]++
	}
	return stats
}
