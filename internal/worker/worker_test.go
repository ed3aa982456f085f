package worker

import (
	"context"
	"testing"
	"time"

	"teachassist/internal/jobs"
	"teachassist/internal/logging"
	"teachassist/internal/testsupport"
)

func TestManagerDrainsQueueOnKick(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 60

	queue := jobs.NewQueue()
	done := make(chan string, 2)
	queue.RegisterHandler(jobs.JobGeneratePackage, func(ctx context.Context, payload string) (string, error) {
		done <- payload
		return "ok", nil
	})

	mgr := NewManager(queue, cfg, logging.NewNop())
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()

	queue.Enqueue(jobs.JobGeneratePackage, "plan-1")
	queue.Enqueue(jobs.JobGeneratePackage, "plan-2")
	mgr.Kick()

	for _, want := range []string{"plan-1", "plan-2"} {
		select {
		case got := <-done:
			if got != want {
				t.Fatalf("processed %q, want %q", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestManagerStartIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := NewManager(jobs.NewQueue(), cfg, logging.NewNop())

	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
	mgr.Stop()

	// Stop on an already stopped manager is a no-op.
	mgr.Stop()
}

func TestManagerStopWaitsForWorker(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1

	queue := jobs.NewQueue()
	started := make(chan struct{})
	queue.RegisterHandler(jobs.JobGeneratePackage, func(ctx context.Context, payload string) (string, error) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return "ok", nil
	})
	queue.Enqueue(jobs.JobGeneratePackage, "plan-1")

	mgr := NewManager(queue, cfg, logging.NewNop())
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	mgr.Kick()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never picked up the job")
	}
	mgr.Stop()

	job := queue.Get("job_1")
	if job == nil || job.Status != jobs.StatusCompleted {
		t.Fatalf("job after Stop = %+v, want completed", job)
	}
}
