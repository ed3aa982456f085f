package store

import (
	"fmt"
	"strings"
	"time"

	"teachassist/internal/intent"
)

// NodeStatus represents the lifecycle of a plan task node.
type NodeStatus string

const (
	NodePending   NodeStatus = "pending"
	NodeRunning   NodeStatus = "running"
	NodeCompleted NodeStatus = "completed"
	NodeFailed    NodeStatus = "failed"
)

// nodeTransitions lists the only legal status moves. Terminal states have
// no outgoing edges, which is what makes transitions monotonic.
var nodeTransitions = map[NodeStatus][]NodeStatus{
	NodePending: {NodeRunning},
	NodeRunning: {NodeCompleted, NodeFailed},
}

// NodeID formats the stable identifier for the nth task node in a plan,
// counting from 1.
func NodeID(n int) string {
	return fmt.Sprintf("node_%d", n)
}

// CanTransition reports whether moving from one node status to another is legal.
func CanTransition(from, to NodeStatus) bool {
	for _, next := range nodeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a node status is terminal.
func (s NodeStatus) IsTerminal() bool {
	return s == NodeCompleted || s == NodeFailed
}

// TaskNode is one generation unit inside a plan.
type TaskNode struct {
	NodeID      string     `json:"node_id"`
	TaskType    string     `json:"task_type"`
	Status      NodeStatus `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DependencyEdge is a (from, to) pair of node ids. Present for
// extensibility; current task types produce flat plans with no edges.
type DependencyEdge [2]string

// Plan is the unit of generation work derived from one request.
type Plan struct {
	ID              string
	RequestID       string
	TaskNodes       []TaskNode
	DependencyEdges []DependencyEdge
	CreatedAt       time.Time
	CompletedAt     *time.Time
}

// RequestStatus is the derived, user-facing state of a request's plan.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusPlanned    RequestStatus = "planned"
	StatusProcessing RequestStatus = "processing"
	StatusCompleted  RequestStatus = "completed"
	StatusFailed     RequestStatus = "failed"
)

// DerivedStatus computes the request-level status from the plan's nodes:
// all completed wins, then any failed, then any running, otherwise planned.
func (p *Plan) DerivedStatus() RequestStatus {
	if p == nil {
		return StatusPending
	}
	allCompleted := len(p.TaskNodes) > 0
	anyFailed := false
	anyRunning := false
	for _, node := range p.TaskNodes {
		switch node.Status {
		case NodeCompleted:
		case NodeFailed:
			anyFailed = true
			allCompleted = false
		case NodeRunning:
			anyRunning = true
			allCompleted = false
		default:
			allCompleted = false
		}
	}
	switch {
	case allCompleted:
		return StatusCompleted
	case anyFailed:
		return StatusFailed
	case anyRunning:
		return StatusProcessing
	default:
		return StatusPlanned
	}
}

// Node returns the task node with the given id, or nil.
func (p *Plan) Node(nodeID string) *TaskNode {
	for i := range p.TaskNodes {
		if p.TaskNodes[i].NodeID == nodeID {
			return &p.TaskNodes[i]
		}
	}
	return nil
}

// Request is a teacher's submitted prompt. Immutable once classified apart
// from the administrative update path.
type Request struct {
	ID            string
	TeacherID     string
	ClassID       string
	PromptText    string
	AttachmentIDs []string
	Intent        intent.Intent
	CreatedAt     time.Time
}

// Attachment records metadata for one uploaded reference file.
type Attachment struct {
	ID           string
	RequestID    string
	FileName     string
	MimeType     string
	SizeBytes    int64
	StoragePath  string
	ParseSuccess bool
	CreatedAt    time.Time
}

// Medium identifies an artifact delivery format.
type Medium string

const (
	MediumMarkdown    Medium = "markdown"
	MediumPDF         Medium = "pdf"
	MediumPPTX        Medium = "pptx"
	MediumGoogleDoc   Medium = "google_doc"
	MediumGoogleSlide Medium = "google_slide"
	MediumSpreadsheet Medium = "spreadsheet"
)

// Tier is a difficulty-level variant of a primary artifact.
type Tier string

const (
	TierApproaching Tier = "approaching"
	TierOnLevel     Tier = "on_level"
	TierAdvanced    Tier = "advanced"
)

// MetaKind tags the artifact metadata variant.
type MetaKind string

const (
	MetaPrimary     MetaKind = "primary"
	MetaTiering     MetaKind = "tiering"
	MetaTranslation MetaKind = "translation"
)

// ArtifactMeta is a closed tagged variant: the Kind selects which fields
// are required, while Extra allows free-form extension fields.
type ArtifactMeta struct {
	Kind             MetaKind          `json:"kind"`
	TaskType         string            `json:"task_type"`
	Model            string            `json:"model,omitempty"`
	NodeID           string            `json:"node_id,omitempty"`
	PromptTokens     int               `json:"prompt_tokens,omitempty"`
	CompletionTokens int               `json:"completion_tokens,omitempty"`
	Tier             Tier              `json:"tier,omitempty"`
	SourceArtifactID string            `json:"source_artifact_id,omitempty"`
	TargetLanguage   string            `json:"target_language,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// Validate checks the variant's required fields.
func (m ArtifactMeta) Validate() error {
	if strings.TrimSpace(m.TaskType) == "" {
		return fmt.Errorf("artifact meta: task type required")
	}
	switch m.Kind {
	case MetaPrimary:
		if m.NodeID == "" {
			return fmt.Errorf("artifact meta: primary variant requires node id")
		}
	case MetaTiering:
		if m.Tier == "" || m.SourceArtifactID == "" {
			return fmt.Errorf("artifact meta: tiering variant requires tier and source artifact")
		}
	case MetaTranslation:
		if m.TargetLanguage == "" || m.SourceArtifactID == "" {
			return fmt.Errorf("artifact meta: translation variant requires target language and source artifact")
		}
	default:
		return fmt.Errorf("artifact meta: unknown kind %q", m.Kind)
	}
	return nil
}

// Artifact is one generated output tied to a request and plan.
type Artifact struct {
	ID        string
	RequestID string
	PlanID    string
	Medium    Medium
	Language  string
	Tier      Tier
	Version   int
	Content   string
	Meta      ArtifactMeta
	CreatedAt time.Time
}

// RiskLevel grades an approval decision.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

// ApprovalEvent records an approve/reject decision for an artifact. Append-only.
type ApprovalEvent struct {
	ID         string
	ArtifactID string
	RiskLevel  RiskLevel
	Status     string
	ApprovedBy string
	Notes      string
	CreatedAt  time.Time
}

// ExportEvent records one export action for an artifact. Append-only.
type ExportEvent struct {
	ID         string
	ArtifactID string
	Medium     Medium
	FileName   string
	Success    bool
	CreatedAt  time.Time
}

// OutcomeFeedback records a post-hoc usefulness rating for a request. Append-only.
type OutcomeFeedback struct {
	ID              string
	RequestID       string
	TeacherID       string
	UsefulnessScore int
	MinutesSaved    float64
	Comments        string
	CreatedAt       time.Time
}

// TeacherProfile describes one teacher account.
type TeacherProfile struct {
	ID          string
	Email       string
	DisplayName string
	Subjects    []string
	GradeBands  []int
	CreatedAt   time.Time
}

// ClassProfile describes one class taught by a teacher.
type ClassProfile struct {
	ID                  string
	TeacherID           string
	Name                string
	Grade               int
	Subject             string
	PeriodLengthMinutes int
	CreatedAt           time.Time
}
