package server

import (
	"fmt"
	"net/http"
	"strings"

	"teachassist/internal/intake"
	"teachassist/internal/jobs"
	"teachassist/internal/store"
)

type attachmentPayload struct {
	FileName    string `json:"file_name"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StoragePath string `json:"storage_path"`
}

type submitPayload struct {
	TeacherID   string              `json:"teacher_id"`
	ClassID     string              `json:"class_id"`
	Prompt      string              `json:"prompt"`
	Attachments []attachmentPayload `json:"attachments"`
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmitRequest(w, r)
	case http.MethodGet:
		s.handleListRequests(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSubmitRequest runs the synchronous half of the pipeline: intake
// and planning happen inline so the response carries a plan, while
// generation is queued for the background worker.
func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if !s.decodeBody(w, r, &payload) {
		return
	}

	attachments := make([]intake.AttachmentInput, 0, len(payload.Attachments))
	for _, att := range payload.Attachments {
		attachments = append(attachments, intake.AttachmentInput{
			FileName:    att.FileName,
			MimeType:    att.MimeType,
			SizeBytes:   att.SizeBytes,
			StoragePath: att.StoragePath,
		})
	}

	req, err := s.intake.Submit(r.Context(), intake.SubmitInput{
		TeacherID:   payload.TeacherID,
		ClassID:     payload.ClassID,
		Prompt:      payload.Prompt,
		Attachments: attachments,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	plan, err := s.planner.CreatePlan(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	job := s.queue.Enqueue(jobs.JobGeneratePackage, plan.ID)
	s.kick()

	s.writeJSON(w, http.StatusCreated, submitResponse{
		RequestID: req.ID,
		PlanID:    plan.ID,
		JobID:     job.ID,
		Intent:    string(req.Intent),
		Status:    plan.DerivedStatus(),
	})
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	var (
		requests []*store.Request
		err      error
	)
	if teacherID := strings.TrimSpace(r.URL.Query().Get("teacher_id")); teacherID != "" {
		requests, err = s.store.ListRequestsByTeacher(r.Context(), teacherID)
	} else {
		requests, err = s.store.ListRequests(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	views := make([]requestView, 0, len(requests))
	for _, req := range requests {
		plan, err := s.store.GetPlanByRequest(r.Context(), req.ID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		views = append(views, newRequestView(req, plan))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"requests": views})
}

// handleRequestItem dispatches /api/requests/{id} and its subresources.
func (s *Server) handleRequestItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/requests/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(sub, "/") {
		s.writeError(w, http.StatusNotFound, "request not found")
		return
	}

	switch sub {
	case "":
		s.handleGetRequest(w, r, id)
	case "plan":
		s.handleGetRequestPlan(w, r, id)
	case "artifacts":
		s.handleGetRequestArtifacts(w, r, id)
	case "feedback":
		s.handleRequestFeedback(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "request not found")
	}
}

func (s *Server) loadRequest(w http.ResponseWriter, r *http.Request, id string) *store.Request {
	req, err := s.store.GetRequest(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return nil
	}
	if req == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("request %s not found", id))
		return nil
	}
	return req
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req := s.loadRequest(w, r, id)
	if req == nil {
		return
	}
	plan, err := s.store.GetPlanByRequest(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newRequestView(req, plan))
}

func (s *Server) handleGetRequestPlan(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if req := s.loadRequest(w, r, id); req == nil {
		return
	}
	plan, err := s.store.GetPlanByRequest(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if plan == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("request %s has no plan", id))
		return
	}
	s.writeJSON(w, http.StatusOK, newPlanView(plan))
}

func (s *Server) handleGetRequestArtifacts(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if req := s.loadRequest(w, r, id); req == nil {
		return
	}
	artifacts, err := s.store.ListArtifactsByRequest(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"artifacts": newArtifactViews(artifacts)})
}

type feedbackPayload struct {
	UsefulnessScore int     `json:"usefulness_score"`
	MinutesSaved    float64 `json:"minutes_saved"`
	Comments        string  `json:"comments"`
}

func (s *Server) handleRequestFeedback(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req := s.loadRequest(w, r, id)
	if req == nil {
		return
	}
	var payload feedbackPayload
	if !s.decodeBody(w, r, &payload) {
		return
	}
	if payload.UsefulnessScore < 1 || payload.UsefulnessScore > 5 {
		s.writeError(w, http.StatusBadRequest, "usefulness_score must be between 1 and 5")
		return
	}

	feedback := &store.OutcomeFeedback{
		RequestID:       req.ID,
		TeacherID:       req.TeacherID,
		UsefulnessScore: payload.UsefulnessScore,
		MinutesSaved:    payload.MinutesSaved,
		Comments:        payload.Comments,
	}
	if err := s.store.CreateOutcomeFeedback(r.Context(), feedback); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, feedbackResponse{
		ID:              feedback.ID,
		RequestID:       feedback.RequestID,
		TeacherID:       feedback.TeacherID,
		UsefulnessScore: feedback.UsefulnessScore,
		MinutesSaved:    feedback.MinutesSaved,
		Comments:        feedback.Comments,
		CreatedAt:       feedback.CreatedAt,
	})
}
