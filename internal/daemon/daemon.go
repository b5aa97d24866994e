package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/api"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/history"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/logging"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/preflight"
)

// ErrAlreadyRunning indicates another daemon holds the data directory lock.
var ErrAlreadyRunning = errors.New("another contentstated instance is already running")

// Daemon serves the encoder over HTTP and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *history.Store
	service *api.Service
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	checks    []preflight.Result
	cancel    context.CancelFunc
}

// New constructs a daemon. store may be nil when history is disabled.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	var historyStore api.HistoryStore
	if store != nil {
		historyStore = store
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		service:  api.NewService(cfg, historyStore, logger),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the lock, runs preflight checks, and opens the listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	d.checks = preflight.RunAll(ctx, d.cfg)
	if failed := preflight.Failed(d.checks); len(failed) > 0 {
		_ = d.lock.Unlock()
		details := make([]string, 0, len(failed))
		for _, r := range failed {
			details = append(details, r.Name+": "+r.Detail)
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(details, "; "))
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("contentstated started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.lockPath),
		logging.String("address", d.Addr()),
		logging.Bool("history", d.service.HistoryEnabled()),
	)
	return nil
}

// Stop closes the listener and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("contentstated stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Service returns the service backing the HTTP handlers.
func (d *Daemon) Service() *api.Service {
	return d.service
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	status := api.StatusResponse{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		HistoryEnabled: d.service.HistoryEnabled(),
	}
	if !d.startedAt.IsZero() {
		status.StartedAt = d.startedAt.Format(time.RFC3339)
	}
	if d.store != nil && status.HistoryEnabled {
		status.HistoryPath = d.store.Path()
	}
	if count, err := d.service.HistoryCount(ctx); err == nil {
		status.HistoryEntries = count
	} else {
		d.logger.Warn("history count failed", logging.Error(err))
	}
	for _, v := range d.service.Viewers() {
		status.Viewers = append(status.Viewers, v.Name)
	}
	for _, r := range d.checks {
		status.Checks = append(status.Checks, api.CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return status
}
