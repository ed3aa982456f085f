package testsupport

import (
	"context"
	"testing"

	"teachassist/internal/config"
	"teachassist/internal/intent"
	"teachassist/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewRequest seeds a classified request for tests.
func NewRequest(t testing.TB, st *store.Store, teacherID, promptText string, in intent.Intent) *store.Request {
	t.Helper()

	req := &store.Request{
		TeacherID:  teacherID,
		PromptText: promptText,
		Intent:     in,
	}
	if err := st.CreateRequest(context.Background(), req); err != nil {
		t.Fatalf("store.CreateRequest: %v", err)
	}
	return req
}

// NewPlan seeds a plan whose nodes are all pending.
func NewPlan(t testing.TB, st *store.Store, requestID string, taskTypes ...string) *store.Plan {
	t.Helper()

	plan := &store.Plan{RequestID: requestID}
	for i, taskType := range taskTypes {
		plan.TaskNodes = append(plan.TaskNodes, store.TaskNode{
			NodeID:   store.NodeID(i + 1),
			TaskType: taskType,
			Status:   store.NodePending,
		})
	}
	if err := st.CreatePlan(context.Background(), plan); err != nil {
		t.Fatalf("store.CreatePlan: %v", err)
	}
	return plan
}
