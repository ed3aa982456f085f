package server

import (
	"time"

	"teachassist/internal/store"
)

// View types shape store records for JSON responses.

type requestView struct {
	ID            string              `json:"id"`
	TeacherID     string              `json:"teacher_id"`
	ClassID       string              `json:"class_id,omitempty"`
	PromptText    string              `json:"prompt_text"`
	AttachmentIDs []string            `json:"attachment_ids"`
	Intent        string              `json:"intent"`
	Status        store.RequestStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
}

func newRequestView(req *store.Request, plan *store.Plan) requestView {
	return requestView{
		ID:            req.ID,
		TeacherID:     req.TeacherID,
		ClassID:       req.ClassID,
		PromptText:    req.PromptText,
		AttachmentIDs: req.AttachmentIDs,
		Intent:        string(req.Intent),
		Status:        plan.DerivedStatus(),
		CreatedAt:     req.CreatedAt,
	}
}

type planView struct {
	ID              string                 `json:"id"`
	RequestID       string                 `json:"request_id"`
	TaskNodes       []store.TaskNode       `json:"task_nodes"`
	DependencyEdges []store.DependencyEdge `json:"dependency_edges"`
	Status          store.RequestStatus    `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
}

func newPlanView(plan *store.Plan) planView {
	return planView{
		ID:              plan.ID,
		RequestID:       plan.RequestID,
		TaskNodes:       plan.TaskNodes,
		DependencyEdges: plan.DependencyEdges,
		Status:          plan.DerivedStatus(),
		CreatedAt:       plan.CreatedAt,
		CompletedAt:     plan.CompletedAt,
	}
}

type artifactView struct {
	ID        string             `json:"id"`
	RequestID string             `json:"request_id"`
	PlanID    string             `json:"plan_id"`
	Medium    store.Medium       `json:"medium"`
	Language  string             `json:"language"`
	Tier      store.Tier         `json:"tier,omitempty"`
	Version   int                `json:"version"`
	Content   string             `json:"content"`
	Meta      store.ArtifactMeta `json:"meta"`
	CreatedAt time.Time          `json:"created_at"`
}

func newArtifactView(artifact *store.Artifact) artifactView {
	return artifactView{
		ID:        artifact.ID,
		RequestID: artifact.RequestID,
		PlanID:    artifact.PlanID,
		Medium:    artifact.Medium,
		Language:  artifact.Language,
		Tier:      artifact.Tier,
		Version:   artifact.Version,
		Content:   artifact.Content,
		Meta:      artifact.Meta,
		CreatedAt: artifact.CreatedAt,
	}
}

func newArtifactViews(artifacts []*store.Artifact) []artifactView {
	views := make([]artifactView, 0, len(artifacts))
	for _, artifact := range artifacts {
		views = append(views, newArtifactView(artifact))
	}
	return views
}

type approvalEventView struct {
	ID         string          `json:"id"`
	ArtifactID string          `json:"artifact_id"`
	RiskLevel  store.RiskLevel `json:"risk_level"`
	Status     string          `json:"status"`
	ApprovedBy string          `json:"approved_by"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newApprovalEventView(event *store.ApprovalEvent) approvalEventView {
	return approvalEventView{
		ID:         event.ID,
		ArtifactID: event.ArtifactID,
		RiskLevel:  event.RiskLevel,
		Status:     event.Status,
		ApprovedBy: event.ApprovedBy,
		Notes:      event.Notes,
		CreatedAt:  event.CreatedAt,
	}
}

type submitResponse struct {
	RequestID string              `json:"request_id"`
	PlanID    string              `json:"plan_id"`
	JobID     string              `json:"job_id"`
	Intent    string              `json:"intent"`
	Status    store.RequestStatus `json:"status"`
}

type feedbackResponse struct {
	ID              string    `json:"id"`
	RequestID       string    `json:"request_id"`
	TeacherID       string    `json:"teacher_id"`
	UsefulnessScore int       `json:"usefulness_score"`
	MinutesSaved    float64   `json:"minutes_saved,omitempty"`
	Comments        string    `json:"comments,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type complianceResponse struct {
	ArtifactID       string          `json:"artifact_id"`
	Compliant        bool            `json:"compliant"`
	Violations       []string        `json:"violations"`
	RequiresApproval bool            `json:"requires_approval"`
	RiskLevel        store.RiskLevel `json:"risk_level"`
}

type statusResponse struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"database_path"`
	StartedAt    time.Time      `json:"started_at"`
	Jobs         map[string]int `json:"jobs"`
}
