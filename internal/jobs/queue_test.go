package jobs

import (
	"context"
	"errors"
	"testing"
)

func TestEnqueueAssignsSequentialIDs(t *testing.T) {
	q := NewQueue()
	first := q.Enqueue(JobGeneratePackage, "plan-1")
	second := q.Enqueue(JobGeneratePackage, "plan-2")

	if first.ID != "job_1" || second.ID != "job_2" {
		t.Fatalf("ids = %q, %q, want job_1, job_2", first.ID, second.ID)
	}
	if first.Status != StatusPending {
		t.Fatalf("status = %q, want pending", first.Status)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be stamped")
	}
}

func TestProcessNextRunsInInsertionOrder(t *testing.T) {
	q := NewQueue()
	var seen []string
	q.RegisterHandler(JobGeneratePackage, func(ctx context.Context, payload string) (string, error) {
		seen = append(seen, payload)
		return "done " + payload, nil
	})
	q.Enqueue(JobGeneratePackage, "plan-1")
	q.Enqueue(JobGeneratePackage, "plan-2")

	job, ok := q.ProcessNext(context.Background())
	if !ok {
		t.Fatal("expected a job to run")
	}
	if job.Payload != "plan-1" || job.Status != StatusCompleted {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.Result != "done plan-1" {
		t.Fatalf("result = %q", job.Result)
	}
	if job.CompletedAt == nil {
		t.Fatal("expected completed_at")
	}

	if _, ok := q.ProcessNext(context.Background()); !ok {
		t.Fatal("expected second job to run")
	}
	if len(seen) != 2 || seen[1] != "plan-2" {
		t.Fatalf("handler order = %v", seen)
	}

	if _, ok := q.ProcessNext(context.Background()); ok {
		t.Fatal("expected empty queue")
	}
}

func TestProcessNextRecordsHandlerError(t *testing.T) {
	q := NewQueue()
	q.RegisterHandler(JobGeneratePackage, func(ctx context.Context, payload string) (string, error) {
		return "", errors.New("generation exploded")
	})
	q.Enqueue(JobGeneratePackage, "plan-1")

	job, ok := q.ProcessNext(context.Background())
	if !ok {
		t.Fatal("expected a job to run")
	}
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if job.Error != "generation exploded" {
		t.Fatalf("error = %q", job.Error)
	}
}

func TestProcessNextFailsUnregisteredType(t *testing.T) {
	q := NewQueue()
	q.Enqueue("mystery-job", "payload")

	job, ok := q.ProcessNext(context.Background())
	if !ok {
		t.Fatal("expected a job to run")
	}
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
}

func TestGetAndCounts(t *testing.T) {
	q := NewQueue()
	q.RegisterHandler(JobGeneratePackage, func(ctx context.Context, payload string) (string, error) {
		return "", nil
	})
	queued := q.Enqueue(JobGeneratePackage, "plan-1")
	q.Enqueue(JobGeneratePackage, "plan-2")
	q.ProcessNext(context.Background())

	if got := q.Get(queued.ID); got == nil || got.Status != StatusCompleted {
		t.Fatalf("Get(%q) = %+v", queued.ID, got)
	}
	if q.Get("job_99") != nil {
		t.Fatal("expected nil for unknown job")
	}

	counts := q.Counts()
	if counts[StatusCompleted] != 1 || counts[StatusPending] != 1 {
		t.Fatalf("counts = %v", counts)
	}
	if !q.Pending() {
		t.Fatal("expected pending work")
	}
}
