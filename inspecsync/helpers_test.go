// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// notifyRecorder captures user-facing notifications for assertions.
type notifyRecorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *notifyRecorder) Notify(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

func (r *notifyRecorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *notifyRecorder) titled(title string) []Notification {
	var out []Notification
	for _, n := range r.all() {
		if n.Title == title {
			out = append(out, n)
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient builds a client on a temp durable store with the server
// address configured and all HTTP traffic routed through rt.
func newTestClient(t *testing.T, rt roundTripFunc) (*Client, *notifyRecorder) {
	t.Helper()

	c := New(DefaultConfig(t.TempDir()), testLogger())
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.State.SetAPIHost("10.0.0.5"))
	if rt != nil {
		c.HTTP = &http.Client{Transport: rt}
	}

	rec := &notifyRecorder{}
	c.SetNotifier(rec)
	return c, rec
}

func validRecord() InspectionRecord {
	return InspectionRecord{
		ExtinguisherID: "EXT1",
		Location:       "Lobby",
		Condition:      ConditionGood,
		InspectedBy:    "A",
		Date:           "2024-01-01",
		Pressure:       "150psi",
	}
}
