package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Approval, export, and feedback rows are append-only. There are no
// update or delete paths for them.

const approvalColumns = `id, artifact_id, risk_level, status, approved_by, notes, created_at`

const exportColumns = `id, artifact_id, medium, file_name, success, created_at`

const feedbackColumns = `id, request_id, teacher_id, usefulness_score, minutes_saved, comments, created_at`

// CreateApprovalEvent records one approval decision for an artifact.
func (s *Store) CreateApprovalEvent(ctx context.Context, event *ApprovalEvent) error {
	if event == nil {
		return errors.New("create approval event: nil event")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO approval_events (`+approvalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.ArtifactID,
		string(event.RiskLevel),
		event.Status,
		event.ApprovedBy,
		event.Notes,
		formatTime(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert approval event: %w", err)
	}
	return nil
}

// ListApprovalEventsByArtifact returns an artifact's approval history,
// oldest first.
func (s *Store) ListApprovalEventsByArtifact(ctx context.Context, artifactID string) ([]*ApprovalEvent, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+approvalColumns+` FROM approval_events WHERE artifact_id = ? ORDER BY created_at ASC, id ASC`,
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("query approval events: %w", err)
	}
	defer rows.Close()

	var out []*ApprovalEvent
	for rows.Next() {
		var (
			event     ApprovalEvent
			riskLevel string
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.ArtifactID, &riskLevel, &event.Status, &event.ApprovedBy, &event.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan approval event: %w", err)
		}
		event.RiskLevel = RiskLevel(riskLevel)
		created, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		event.CreatedAt = created
		out = append(out, &event)
	}
	return out, rows.Err()
}

// CreateExportEvent records one export action for an artifact.
func (s *Store) CreateExportEvent(ctx context.Context, event *ExportEvent) error {
	if event == nil {
		return errors.New("create export event: nil event")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO export_events (`+exportColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.ArtifactID,
		string(event.Medium),
		event.FileName,
		boolToInt(event.Success),
		formatTime(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert export event: %w", err)
	}
	return nil
}

// ListExportEventsByArtifact returns an artifact's export history, oldest
// first.
func (s *Store) ListExportEventsByArtifact(ctx context.Context, artifactID string) ([]*ExportEvent, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+exportColumns+` FROM export_events WHERE artifact_id = ? ORDER BY created_at ASC, id ASC`,
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("query export events: %w", err)
	}
	defer rows.Close()

	var out []*ExportEvent
	for rows.Next() {
		var (
			event     ExportEvent
			medium    string
			success   int
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.ArtifactID, &medium, &event.FileName, &success, &createdAt); err != nil {
			return nil, fmt.Errorf("scan export event: %w", err)
		}
		event.Medium = Medium(medium)
		event.Success = success != 0
		created, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		event.CreatedAt = created
		out = append(out, &event)
	}
	return out, rows.Err()
}

// CreateOutcomeFeedback records a usefulness rating for a request.
func (s *Store) CreateOutcomeFeedback(ctx context.Context, feedback *OutcomeFeedback) error {
	if feedback == nil {
		return errors.New("create outcome feedback: nil feedback")
	}
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO outcome_feedback (`+feedbackColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		feedback.ID,
		feedback.RequestID,
		feedback.TeacherID,
		feedback.UsefulnessScore,
		feedback.MinutesSaved,
		feedback.Comments,
		formatTime(feedback.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outcome feedback: %w", err)
	}
	return nil
}

// ListOutcomeFeedbackByRequest returns a request's feedback entries,
// oldest first.
func (s *Store) ListOutcomeFeedbackByRequest(ctx context.Context, requestID string) ([]*OutcomeFeedback, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+feedbackColumns+` FROM outcome_feedback WHERE request_id = ? ORDER BY created_at ASC, id ASC`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("query outcome feedback: %w", err)
	}
	defer rows.Close()

	var out []*OutcomeFeedback
	for rows.Next() {
		var (
			feedback  OutcomeFeedback
			createdAt string
		)
		if err := rows.Scan(&feedback.ID, &feedback.RequestID, &feedback.TeacherID, &feedback.UsefulnessScore, &feedback.MinutesSaved, &feedback.Comments, &createdAt); err != nil {
			return nil, fmt.Errorf("scan outcome feedback: %w", err)
		}
		created, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		feedback.CreatedAt = created
		out = append(out, &feedback)
	}
	return out, rows.Err()
}
