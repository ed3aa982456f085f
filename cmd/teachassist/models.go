package main

import "time"

// Response shapes mirrored from the daemon API.

type submitResult struct {
	RequestID string `json:"request_id"`
	PlanID    string `json:"plan_id"`
	JobID     string `json:"job_id"`
	Intent    string `json:"intent"`
	Status    string `json:"status"`
}

type requestModel struct {
	ID            string    `json:"id"`
	TeacherID     string    `json:"teacher_id"`
	ClassID       string    `json:"class_id"`
	PromptText    string    `json:"prompt_text"`
	AttachmentIDs []string  `json:"attachment_ids"`
	Intent        string    `json:"intent"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type requestListing struct {
	Requests []requestModel `json:"requests"`
}

type taskNodeModel struct {
	NodeID   string `json:"node_id"`
	TaskType string `json:"task_type"`
	Status   string `json:"status"`
}

type planModel struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id"`
	TaskNodes []taskNodeModel `json:"task_nodes"`
	Status    string          `json:"status"`
}

type artifactMetaModel struct {
	Kind           string `json:"kind"`
	TaskType       string `json:"task_type"`
	Tier           string `json:"tier"`
	TargetLanguage string `json:"target_language"`
}

type artifactModel struct {
	ID        string            `json:"id"`
	RequestID string            `json:"request_id"`
	Medium    string            `json:"medium"`
	Language  string            `json:"language"`
	Tier      string            `json:"tier"`
	Version   int               `json:"version"`
	Content   string            `json:"content"`
	Meta      artifactMetaModel `json:"meta"`
	CreatedAt time.Time         `json:"created_at"`
}

type artifactListing struct {
	Artifacts []artifactModel `json:"artifacts"`
}

type statusModel struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"database_path"`
	StartedAt    time.Time      `json:"started_at"`
	Jobs         map[string]int `json:"jobs"`
}
