// Package worker drives the job queue in the background, draining
// pending jobs on a poll interval or an explicit kick.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"teachassist/internal/config"
	"teachassist/internal/jobs"
)

// Manager owns the background goroutine that processes queued jobs.
type Manager struct {
	queue  *jobs.Queue
	logger *slog.Logger

	pollInterval time.Duration
	kick         chan struct{}

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a stopped manager.
func NewManager(queue *jobs.Queue, cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	interval := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Manager{
		queue:        queue,
		logger:       logger.With("component", "worker"),
		pollInterval: interval,
		kick:         make(chan struct{}, 1),
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("worker already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Kick wakes the worker immediately instead of waiting for the next
// poll tick. Safe to call from any goroutine; extra kicks coalesce.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, ok := m.queue.ProcessNext(ctx)
		if ok {
			if job.Status == jobs.StatusFailed {
				m.logger.Error("job failed",
					"job_id", job.ID,
					"job_type", job.Type,
					"error", job.Error)
			} else {
				m.logger.Info("job completed",
					"job_id", job.ID,
					"job_type", job.Type,
					"result", job.Result)
			}
			continue
		}

		m.waitForWorkOrShutdown(ctx)
	}
}

func (m *Manager) waitForWorkOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-m.kick:
	case <-time.After(m.pollInterval):
	}
}
