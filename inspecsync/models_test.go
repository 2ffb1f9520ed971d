// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConditionValidity(t *testing.T) {
	for _, c := range []Condition{
		ConditionExcellent, ConditionGood, ConditionFair,
		ConditionPoor, ConditionNeedsReplacement,
	} {
		require.True(t, c.IsValid(), c)
	}
	require.False(t, Condition("broken").IsValid())
	require.False(t, Condition("").IsValid())
}

func TestMissingFields(t *testing.T) {
	rec := InspectionRecord{}
	require.ElementsMatch(t,
		[]string{"inspectedBy", "extinguisherId", "location"},
		rec.MissingFields(false))
	require.ElementsMatch(t,
		[]string{"inspectedBy", "extinguisherId", "location", "pressure"},
		rec.MissingFields(true))

	full := validRecord()
	require.Empty(t, full.MissingFields(true))
	require.True(t, full.Submittable())
}

func TestRecordJSONShape(t *testing.T) {
	rec := validRecord()
	rec.ID = "abc"

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"id", "extinguisherId", "location", "condition", "inspectedBy", "date", "pressure"} {
		require.Contains(t, m, key)
	}
	// Optional empties are omitted from the wire form.
	require.NotContains(t, m, "description")
	require.NotContains(t, m, "photoUrl")
}

func TestQueueIDShape(t *testing.T) {
	id := newQueueID("sync")
	parts := strings.SplitN(id, "_", 3)
	require.Len(t, parts, 3)
	require.Equal(t, "sync", parts[0])
	require.NotEqual(t, newQueueID("sync"), id)
}
