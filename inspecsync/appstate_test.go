// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAPIHostValidation(t *testing.T) {
	cases := []struct {
		ip string
		ok bool
	}{
		{"10.0.0.5", true},
		{"192.168.1.255", true},
		{"255.255.255.255", true},
		{"0.0.0.0", true},
		{" 10.0.0.5 ", true}, // surrounding whitespace is trimmed
		{"256.1.1.1", false},
		{"10.0.0", false},
		{"10.0.0.5.1", false},
		{"example.com", false},
		{"10.0.0.5:8080", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.ip, func(t *testing.T) {
			a := NewAppState(testLogger())
			err := a.SetAPIHost(tc.ip)
			if tc.ok {
				require.NoError(t, err)
				require.NotEmpty(t, a.APIHost())
			} else {
				require.ErrorIs(t, err, ErrInvalidHost)
				// Invalid input is never stored.
				require.Empty(t, a.APIHost())
			}
		})
	}
}

func TestInvalidHostKeepsPreviousValue(t *testing.T) {
	a := NewAppState(testLogger())
	require.NoError(t, a.SetAPIHost("10.0.0.5"))
	require.ErrorIs(t, a.SetAPIHost("bogus"), ErrInvalidHost)
	require.Equal(t, "10.0.0.5", a.APIHost())
}

func TestOfflineQueueDedup(t *testing.T) {
	a := NewAppState(testLogger())

	rec := validRecord()
	rec.ID = "one"
	require.True(t, a.AddToOfflineQueue(rec))

	dup := validRecord()
	dup.ID = "two" // same extinguisher + date, different id
	require.False(t, a.AddToOfflineQueue(dup))
	require.Len(t, a.OfflineQueue(), 1)

	other := validRecord()
	other.ID = "three"
	other.Date = "2024-01-02"
	require.True(t, a.AddToOfflineQueue(other))
	require.Len(t, a.OfflineQueue(), 2)
}

func TestOfflineQueueRemove(t *testing.T) {
	a := NewAppState(testLogger())

	for i, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		rec := validRecord()
		rec.ID = string(rune('a' + i))
		rec.Date = date
		a.AddToOfflineQueue(rec)
	}

	a.RemoveFromOfflineQueue("b")
	queue := a.OfflineQueue()
	require.Len(t, queue, 2)
	require.Equal(t, "a", queue[0].ID)
	require.Equal(t, "c", queue[1].ID)
}

func TestInspectionCacheCRUD(t *testing.T) {
	a := NewAppState(testLogger())

	rec := validRecord()
	rec.ID = "r1"
	a.AddInspection(rec)

	got, ok := a.Inspection("r1")
	require.True(t, ok)
	require.Equal(t, "EXT1", got.ExtinguisherID)

	rec.Condition = ConditionPoor
	require.True(t, a.UpdateInspection(rec))
	got, _ = a.Inspection("r1")
	require.Equal(t, ConditionPoor, got.Condition)

	missing := validRecord()
	missing.ID = "ghost"
	require.False(t, a.UpdateInspection(missing))

	a.DeleteInspection("r1")
	_, ok = a.Inspection("r1")
	require.False(t, ok)
}

func TestInspectionFiltersAndStats(t *testing.T) {
	a := NewAppState(testLogger())

	lobby := validRecord()
	lobby.ID = "1"
	a.AddInspection(lobby)

	office := validRecord()
	office.ID = "2"
	office.ExtinguisherID = "EXT2"
	office.Location = "2F Office"
	office.Condition = ConditionPoor
	office.Description = "gauge cracked"
	a.AddInspection(office)

	require.Len(t, a.InspectionsByLocation("office"), 1)
	require.Len(t, a.InspectionsByCondition(ConditionPoor), 1)
	require.Len(t, a.SearchInspections("cracked"), 1)
	require.Len(t, a.SearchInspections("ext"), 2)

	stats := a.Stats()
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.ByCondition[ConditionGood])
	require.Equal(t, 1, stats.ByCondition[ConditionPoor])
	require.Equal(t, 1, stats.ByLocation["Lobby"])
}
