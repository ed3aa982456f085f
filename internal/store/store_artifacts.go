package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const artifactColumns = `id, request_id, plan_id, medium, language, tier, version, content, meta_json, created_at`

// CreateArtifact inserts a generated artifact. The referenced plan must
// exist and belong to the artifact's request; metadata is validated
// against its kind before anything is written.
func (s *Store) CreateArtifact(ctx context.Context, artifact *Artifact) error {
	if artifact == nil {
		return errors.New("create artifact: nil artifact")
	}
	if err := artifact.Meta.Validate(); err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	if artifact.ID == "" {
		artifact.ID = uuid.NewString()
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}
	if artifact.Version <= 0 {
		artifact.Version = 1
	}
	if artifact.Language == "" {
		artifact.Language = "en"
	}

	plan, err := s.GetPlan(ctx, artifact.PlanID)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	if plan == nil {
		return fmt.Errorf("create artifact: plan %s not found", artifact.PlanID)
	}
	if plan.RequestID != artifact.RequestID {
		return fmt.Errorf("create artifact: plan %s belongs to request %s, not %s", artifact.PlanID, plan.RequestID, artifact.RequestID)
	}

	metaJSON, err := marshalJSON(artifact.Meta)
	if err != nil {
		return err
	}
	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO artifacts (`+artifactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		artifact.ID,
		artifact.RequestID,
		artifact.PlanID,
		string(artifact.Medium),
		artifact.Language,
		string(artifact.Tier),
		artifact.Version,
		artifact.Content,
		metaJSON,
		formatTime(artifact.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// GetArtifact returns the artifact with the given id, or nil when absent.
func (s *Store) GetArtifact(ctx context.Context, id string) (*Artifact, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id)
	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return artifact, nil
}

// ListArtifactsByRequest returns a request's artifacts in creation order.
func (s *Store) ListArtifactsByRequest(ctx context.Context, requestID string) ([]*Artifact, error) {
	return s.queryArtifacts(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE request_id = ? ORDER BY created_at ASC, id ASC`, requestID)
}

// ListArtifactsByPlan returns a plan's artifacts in creation order.
func (s *Store) ListArtifactsByPlan(ctx context.Context, planID string) ([]*Artifact, error) {
	return s.queryArtifacts(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE plan_id = ? ORDER BY created_at ASC, id ASC`, planID)
}

// UpdateArtifactContent replaces an artifact's content and bumps its
// version counter.
func (s *Store) UpdateArtifactContent(ctx context.Context, id, content string) error {
	res, err := s.execWithRetry(ctx, `UPDATE artifacts SET content = ?, version = version + 1 WHERE id = ?`, content, id)
	if err != nil {
		return fmt.Errorf("update artifact content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update artifact content: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update artifact content: artifact %s not found", id)
	}
	return nil
}

func (s *Store) queryArtifacts(ctx context.Context, query string, args ...any) ([]*Artifact, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	var out []*Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		out = append(out, artifact)
	}
	return out, rows.Err()
}

func scanArtifact(row rowScanner) (*Artifact, error) {
	var (
		artifact  Artifact
		medium    string
		tier      string
		metaJSON  string
		createdAt string
	)
	if err := row.Scan(&artifact.ID, &artifact.RequestID, &artifact.PlanID, &medium, &artifact.Language, &tier, &artifact.Version, &artifact.Content, &metaJSON, &createdAt); err != nil {
		return nil, err
	}
	artifact.Medium = Medium(medium)
	artifact.Tier = Tier(tier)
	if err := unmarshalJSON(metaJSON, &artifact.Meta); err != nil {
		return nil, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	artifact.CreatedAt = created
	return &artifact, nil
}
