package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"teachassist/internal/config"
	"teachassist/internal/jobs"
	"teachassist/internal/llm"
	"teachassist/internal/store"
	"teachassist/internal/worker"
)

// Daemon hosts the API server and queue worker, and enforces
// single-instance execution with a file lock.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	store  *store.Store
	queue  *jobs.Queue
	worker *worker.Manager
	server *Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// NewDaemon opens the store and wires the full service stack.
func NewDaemon(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	provider := llm.NewProvider(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	queue := jobs.NewQueue()
	mgr := worker.NewManager(queue, cfg, logger)
	srv := New(cfg, st, provider, queue, mgr.Kick, logger)

	lockPath := filepath.Join(cfg.Paths.DataDir, "teachassistd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger.With("component", "daemon"),
		store:    st,
		queue:    queue,
		worker:   mgr,
		server:   srv,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, then starts the worker and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another teachassist daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.worker.Start(runCtx); err != nil {
		d.releaseStart()
		return fmt.Errorf("start worker: %w", err)
	}
	if err := d.server.Start(runCtx); err != nil {
		d.worker.Stop()
		d.releaseStart()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		"lock", d.lockPath,
		"address", d.server.Addr(),
		"database", d.store.Path())
	return nil
}

func (d *Daemon) releaseStart() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Stop shuts down the API server and worker and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	d.worker.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", "error", err)
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Addr returns the API server's bound address.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}
