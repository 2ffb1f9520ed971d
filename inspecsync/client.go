// Package inspecsync implements the offline-resilience core of the
// equipment-inspection tool: it routes validated inspection submissions to
// the server or into durable local queues depending on connectivity, and
// replays the queues exactly once each when connectivity returns.
// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/daemang7/inspecsync/kvstore"
)

// inspectionsEndpoint is the fixed resource path inspection records are
// created at.
const inspectionsEndpoint = "/api/inspections"

// Config holds tunables for the client.
type Config struct {
	// DataDir roots the durable store. Empty means no durable tier is
	// available and storage degrades to in-memory.
	DataDir string

	// RequestTimeout bounds every network send. Requests past the deadline
	// classify as a network failure.
	RequestTimeout time.Duration

	// ResetDelay is how long the completed sync status stays visible before
	// auto-resetting to idle.
	ResetDelay time.Duration

	// RequirePressure additionally gates queue entry on a non-empty pressure
	// reading. Off by default: the form-level validator does not require it.
	RequirePressure bool

	// ProbeInterval spaces the reachability dials started by Start. Zero
	// disables the probe loop; reachability is then driven entirely through
	// Monitor.SetActualOnline.
	ProbeInterval time.Duration
}

// DefaultConfig returns the standard tunables.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		DataDir:        dataDir,
		RequestTimeout: 10 * time.Second,
		ResetDelay:     3 * time.Second,
	}
}

// NotificationLevel grades user-facing notifications.
type NotificationLevel int

const (
	LevelInfo NotificationLevel = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Notification is a toast-style message for the UI boundary.
type Notification struct {
	Level   NotificationLevel
	Title   string
	Message string
}

// Notifier receives user-facing notifications. Implementations must not
// block; they are called from submission and sync paths.
type Notifier interface {
	Notify(n Notification)
}

type noopNotifier struct{}

func (noopNotifier) Notify(Notification) {}

// Client wires the subsystem together: durable store, offline collections,
// connectivity monitor, transport and the sync engine. Construct one per
// process with New and share it by reference.
type Client struct {
	Store   kvstore.Store
	Storage *Storage
	State   *AppState
	Monitor *Monitor
	HTTP    *http.Client

	config   *Config
	logger   *slog.Logger
	notifier Notifier
	statusFn func(SyncStatus)

	// Sync engine state. wasOffline tracks the previous effective-offline
	// value for edge detection; drainMu keeps overlapping transitions from
	// running two drains over the same snapshot.
	drainMu    sync.Mutex
	stateMu    sync.Mutex
	wasOffline bool
	status     SyncStatus
	resetTimer *time.Timer

	unbind    func()
	cancelRun context.CancelFunc
}

// New builds a client from cfg. A nil cfg uses DefaultConfig with no data
// directory; a nil logger uses slog.Default(). The monitor starts online —
// call Start to bind sync triggering and the reachability probe.
func New(cfg *Config, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	store := kvstore.Open(cfg.DataDir, logger)

	c := &Client{
		Store:    store,
		Storage:  NewStorage(store, logger),
		State:    NewAppState(logger),
		Monitor:  NewMonitor(true, logger),
		HTTP:     &http.Client{Timeout: cfg.RequestTimeout},
		config:   cfg,
		logger:   logger,
		notifier: noopNotifier{},
	}
	c.wasOffline = c.Monitor.EffectiveOffline()
	return c
}

// SetNotifier routes user-facing notifications to n. A nil n restores the
// no-op default.
func (c *Client) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	c.notifier = n
}

// OnSyncStatus registers fn to receive progress snapshots during offline
// queue drains. Pass nil to remove the listener.
func (c *Client) OnSyncStatus(fn func(SyncStatus)) {
	c.stateMu.Lock()
	c.statusFn = fn
	c.stateMu.Unlock()
}

// Start subscribes the sync engine to connectivity transitions and, when a
// probe interval is configured, starts the reachability probe loop. It
// returns immediately; background work stops when ctx is cancelled or Close
// is called.
func (c *Client) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancelRun = cancel

	c.stateMu.Lock()
	c.wasOffline = c.Monitor.EffectiveOffline()
	c.stateMu.Unlock()

	c.unbind = c.Monitor.Subscribe(func(offline bool) {
		c.onConnectivityChange(runCtx, offline)
	})

	if c.config.ProbeInterval > 0 {
		go func() {
			host := c.State.APIHost()
			if host == "" {
				c.logger.Debug("probe loop idle: no server address configured")
				return
			}
			c.Monitor.RunProbe(runCtx, host+":80", c.config.ProbeInterval)
		}()
	}

	c.logger.Info("inspecsync client started", "store", c.Store.Name())
}

// Close detaches the sync engine and releases the durable store.
func (c *Client) Close() error {
	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	if c.cancelRun != nil {
		c.cancelRun()
	}
	c.stateMu.Lock()
	if c.resetTimer != nil {
		c.resetTimer.Stop()
	}
	c.stateMu.Unlock()
	return c.Store.Close()
}

// FetchInspections retrieves the inspection list from the server and
// refreshes the in-memory cache the UI boundary reads.
func (c *Client) FetchInspections(ctx context.Context) ([]InspectionRecord, error) {
	var records []InspectionRecord
	if err := c.getJSON(ctx, inspectionsEndpoint, &records); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if !c.State.UpdateInspection(rec) {
			c.State.AddInspection(rec)
		}
	}
	return records, nil
}

// PendingInspections exposes the durable pending collection.
func (c *Client) PendingInspections(ctx context.Context) []OfflineInspection {
	return c.Storage.PendingInspections(ctx)
}

// SyncQueue exposes the durable sync queue.
func (c *Client) SyncQueue(ctx context.Context) []SyncQueueItem {
	return c.Storage.SyncQueue(ctx)
}

// OfflineCounts reports the sizes of the two durable collections.
func (c *Client) OfflineCounts(ctx context.Context) (inspections, queued int) {
	return c.Storage.Counts(ctx)
}

// ClearOfflineData empties the durable collections and the mirror queue.
func (c *Client) ClearOfflineData(ctx context.Context) {
	c.Storage.ClearAll(ctx)
	c.State.ClearOfflineQueue()
}

func (c *Client) notify(level NotificationLevel, title, message string) {
	c.notifier.Notify(Notification{Level: level, Title: title, Message: message})
}
