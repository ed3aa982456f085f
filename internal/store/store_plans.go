package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const planColumns = `id, request_id, task_nodes_json, dependency_edges_json, created_at, completed_at`

// CreatePlan inserts a plan and its node graph. Nodes start in their given
// statuses; the caller seeds them as pending.
func (s *Store) CreatePlan(ctx context.Context, plan *Plan) error {
	if plan == nil {
		return errors.New("create plan: nil plan")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	nodesJSON, err := marshalJSON(plan.TaskNodes)
	if err != nil {
		return err
	}
	edges := plan.DependencyEdges
	if edges == nil {
		edges = []DependencyEdge{}
	}
	edgesJSON, err := marshalJSON(edges)
	if err != nil {
		return err
	}

	var completedAt any
	if plan.CompletedAt != nil {
		completedAt = formatTime(*plan.CompletedAt)
	}
	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO plans (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.RequestID,
		nodesJSON,
		edgesJSON,
		formatTime(plan.CreatedAt),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// GetPlan returns the plan with the given id, or nil when absent.
func (s *Store) GetPlan(ctx context.Context, id string) (*Plan, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+planColumns+` FROM plans WHERE id = ?`, id)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}

// GetPlanByRequest returns the most recent plan for a request, or nil when
// the request has not been planned yet.
func (s *Store) GetPlanByRequest(ctx context.Context, requestID string) (*Plan, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+planColumns+` FROM plans WHERE request_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		requestID,
	)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan by request: %w", err)
	}
	return plan, nil
}

// TransitionNode moves one task node to a new status. Only the forward
// transitions pending->running and running->completed/failed are accepted;
// anything else returns an error and leaves the plan untouched. Timestamps
// are stamped on entry to running and on reaching a terminal status.
func (s *Store) TransitionNode(ctx context.Context, planID, nodeID string, status NodeStatus) error {
	return retryOnBusy(ensureContext(ctx), func() error {
		return s.transitionNodeOnce(ensureContext(ctx), planID, nodeID, status)
	})
}

func (s *Store) transitionNodeOnce(ctx context.Context, planID, nodeID string, status NodeStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT task_nodes_json FROM plans WHERE id = ?`, planID)
	var nodesJSON string
	if err := row.Scan(&nodesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transition node: plan %s not found", planID)
		}
		return fmt.Errorf("transition node: %w", err)
	}
	var nodes []TaskNode
	if err := unmarshalJSON(nodesJSON, &nodes); err != nil {
		return fmt.Errorf("transition node: %w", err)
	}

	idx := -1
	for i := range nodes {
		if nodes[i].NodeID == nodeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("transition node: node %s not found in plan %s", nodeID, planID)
	}
	node := &nodes[idx]
	if !CanTransition(node.Status, status) {
		return fmt.Errorf("transition node: %s -> %s not allowed for node %s", node.Status, status, nodeID)
	}

	now := time.Now().UTC()
	node.Status = status
	switch status {
	case NodeRunning:
		node.StartedAt = &now
	case NodeCompleted, NodeFailed:
		node.CompletedAt = &now
	}

	updatedJSON, err := marshalJSON(nodes)
	if err != nil {
		return fmt.Errorf("transition node: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE plans SET task_nodes_json = ? WHERE id = ?`, updatedJSON, planID); err != nil {
		return fmt.Errorf("transition node: update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transition node: commit: %w", err)
	}
	return nil
}

// MarkPlanCompleted stamps the plan's completion time. The timestamp is
// set once; later calls are no-ops.
func (s *Store) MarkPlanCompleted(ctx context.Context, planID string, completedAt time.Time) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE plans SET completed_at = ? WHERE id = ? AND completed_at IS NULL`,
		formatTime(completedAt.UTC()),
		planID,
	)
	if err != nil {
		return fmt.Errorf("mark plan completed: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("mark plan completed: rows affected: %w", err)
	}
	return nil
}

func scanPlan(row rowScanner) (*Plan, error) {
	var (
		plan        Plan
		nodesJSON   string
		edgesJSON   string
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(&plan.ID, &plan.RequestID, &nodesJSON, &edgesJSON, &createdAt, &completedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(nodesJSON, &plan.TaskNodes); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(edgesJSON, &plan.DependencyEdges); err != nil {
		return nil, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	plan.CreatedAt = created
	completed, err := parseNullableTime(completedAt)
	if err != nil {
		return nil, err
	}
	plan.CompletedAt = completed
	return &plan, nil
}
