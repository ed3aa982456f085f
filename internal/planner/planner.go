// Package planner turns a classified request into a persisted execution
// plan of task nodes.
package planner

import (
	"context"
	"log/slog"

	"teachassist/internal/intent"
	"teachassist/internal/services"
	"teachassist/internal/store"
)

// intentTasks maps each intent to the ordered task types its plan runs.
var intentTasks = map[intent.Intent][]string{
	intent.LessonPlan:   {"generate-lesson-plan"},
	intent.Worksheet:    {"generate-worksheet"},
	intent.Assessment:   {"generate-assessment"},
	intent.SlideDeck:    {"generate-slide-deck"},
	intent.ParentLetter: {"generate-parent-letter"},
	intent.IEPSupport:   {"generate-iep-support"},
	intent.Translation:  {"generate-translation"},
	intent.SeatingChart: {"generate-seating-chart"},
	intent.Rubric:       {"generate-rubric"},
	intent.Other:        {"generate-generic"},
}

// TasksFor returns the task types for an intent, falling back to the
// generic task for unmapped values.
func TasksFor(in intent.Intent) []string {
	if tasks, ok := intentTasks[in]; ok {
		return tasks
	}
	return []string{"generate-generic"}
}

// Service builds plans.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService constructs the planner.
func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger.With("component", "planner")}
}

// CreatePlan builds and persists a plan for the request. Every node
// starts pending with a stable node_1..node_n id.
func (s *Service) CreatePlan(ctx context.Context, req *store.Request) (*store.Plan, error) {
	if req == nil || req.ID == "" {
		return nil, services.Wrap(services.ErrValidation, "planner", "create plan", "request required", nil)
	}

	tasks := TasksFor(req.Intent)
	plan := &store.Plan{RequestID: req.ID}
	for i, taskType := range tasks {
		plan.TaskNodes = append(plan.TaskNodes, store.TaskNode{
			NodeID:   store.NodeID(i + 1),
			TaskType: taskType,
			Status:   store.NodePending,
		})
	}
	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return nil, services.Wrap(services.ErrTransient, "planner", "create plan", "persist plan", err)
	}

	s.logger.Info("plan created",
		"plan_id", plan.ID,
		"request_id", req.ID,
		"intent", string(req.Intent),
		"nodes", len(plan.TaskNodes))
	return plan, nil
}
