// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Monitor tracks actual network reachability plus an operator-settable
// forced-offline override, and broadcasts the derived effective-offline
// signal on every input assignment. A single instance is constructed at
// startup and passed by reference to whatever needs the signal.
type Monitor struct {
	mu            sync.Mutex
	actualOnline  bool
	forcedOffline bool
	nextSubID     int
	subs          map[int]func(offline bool)
	logger        *slog.Logger
}

// NewMonitor samples initialOnline as the starting reachability state.
// Forced-offline starts false.
func NewMonitor(initialOnline bool, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		actualOnline: initialOnline,
		subs:         make(map[int]func(offline bool)),
		logger:       logger,
	}
}

// EffectiveOffline is true when the operator forced offline mode or the
// network is actually unreachable.
func (m *Monitor) EffectiveOffline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forcedOffline || !m.actualOnline
}

// ForcedOffline returns the operator override on its own.
func (m *Monitor) ForcedOffline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forcedOffline
}

// SetActualOnline records platform reachability and broadcasts the derived
// signal. Assignments broadcast even when the value did not change;
// downstream edge detection belongs to the subscribers.
func (m *Monitor) SetActualOnline(online bool) {
	m.mu.Lock()
	m.actualOnline = online
	m.mu.Unlock()
	m.logger.Debug("network reachability changed", "online", online)
	m.broadcast()
}

// SetForcedOffline records the operator override and broadcasts. Setting the
// current value again still broadcasts; callers rely on forcing a
// re-broadcast.
func (m *Monitor) SetForcedOffline(forced bool) {
	m.mu.Lock()
	m.forcedOffline = forced
	m.mu.Unlock()
	m.logger.Info("forced offline changed", "forced", forced)
	m.broadcast()
}

// Subscribe registers fn to be called synchronously with the new
// effective-offline value on every broadcast. The returned function removes
// the subscription.
func (m *Monitor) Subscribe(fn func(offline bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Monitor) broadcast() {
	m.mu.Lock()
	offline := m.forcedOffline || !m.actualOnline
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	// Subscribers run outside the lock so they may call back into the
	// monitor without deadlocking.
	for _, fn := range fns {
		fn(offline)
	}
}

// RunProbe feeds SetActualOnline from periodic TCP dials against addr
// (host:port) until ctx is cancelled. It stands in for a platform
// reachability event source.
func (m *Monitor) RunProbe(ctx context.Context, addr string, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", addr, 3*time.Second)
			if err == nil {
				conn.Close()
			}
			m.SetActualOnline(err == nil)
		}
	}
}
