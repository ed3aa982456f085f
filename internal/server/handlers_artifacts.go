package server

import (
	"fmt"
	"net/http"
	"strings"

	"teachassist/internal/evaluate"
	"teachassist/internal/export"
	"teachassist/internal/policy"
	"teachassist/internal/store"
)

// handleArtifactItem dispatches /api/artifacts/{id} and its subresources.
func (s *Server) handleArtifactItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/artifacts/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(sub, "/") {
		s.writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	switch sub {
	case "":
		s.handleArtifact(w, r, id)
	case "approve":
		s.handleArtifactApprove(w, r, id)
	case "export":
		s.handleArtifactExport(w, r, id)
	case "evaluate":
		s.handleArtifactEvaluate(w, r, id)
	case "compliance":
		s.handleArtifactCompliance(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "artifact not found")
	}
}

func (s *Server) loadArtifact(w http.ResponseWriter, r *http.Request, id string) *store.Artifact {
	artifact, err := s.store.GetArtifact(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return nil
	}
	if artifact == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("artifact %s not found", id))
		return nil
	}
	return artifact
}

type updateArtifactPayload struct {
	Content string `json:"content"`
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		artifact := s.loadArtifact(w, r, id)
		if artifact == nil {
			return
		}
		s.writeJSON(w, http.StatusOK, newArtifactView(artifact))
	case http.MethodPut:
		artifact := s.loadArtifact(w, r, id)
		if artifact == nil {
			return
		}
		var payload updateArtifactPayload
		if !s.decodeBody(w, r, &payload) {
			return
		}
		if strings.TrimSpace(payload.Content) == "" {
			s.writeError(w, http.StatusBadRequest, "content must not be empty")
			return
		}
		if err := s.store.UpdateArtifactContent(r.Context(), id, payload.Content); err != nil {
			s.writeServiceError(w, err)
			return
		}
		updated, err := s.store.GetArtifact(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, newArtifactView(updated))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type approvePayload struct {
	ApprovedBy string `json:"approved_by"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

// handleArtifactApprove records an approval decision. The risk level is
// computed from the policy checker, not taken from the caller.
func (s *Server) handleArtifactApprove(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if artifact := s.loadArtifact(w, r, id); artifact == nil {
		return
	}
	var payload approvePayload
	if !s.decodeBody(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.ApprovedBy) == "" {
		s.writeError(w, http.StatusBadRequest, "approved_by required")
		return
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = "approved"
	}
	if status != "approved" && status != "rejected" {
		s.writeError(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	riskLevel, err := s.policy.RiskLevel(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	event := &store.ApprovalEvent{
		ArtifactID: id,
		RiskLevel:  riskLevel,
		Status:     status,
		ApprovedBy: payload.ApprovedBy,
		Notes:      payload.Notes,
	}
	if err := s.store.CreateApprovalEvent(r.Context(), event); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, newApprovalEventView(event))
}

type exportPayload struct {
	Medium string `json:"medium"`
}

// handleArtifactExport renders the artifact and streams the bytes back.
// Every attempt is recorded as an export event, including failures.
func (s *Server) handleArtifactExport(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	artifact := s.loadArtifact(w, r, id)
	if artifact == nil {
		return
	}
	var payload exportPayload
	if !s.decodeBody(w, r, &payload) {
		return
	}
	medium := store.Medium(strings.TrimSpace(payload.Medium))
	if medium == "" {
		medium = artifact.Medium
	}

	result, err := export.Render(artifact, medium)

	event := &store.ExportEvent{
		ArtifactID: id,
		Medium:     medium,
		Success:    err == nil,
	}
	if result != nil {
		event.FileName = result.FileName
	}
	if storeErr := s.store.CreateExportEvent(r.Context(), event); storeErr != nil {
		s.logger.Error("failed to record export event", "artifact_id", id, "error", storeErr)
	}

	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(result.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Content); err != nil {
		s.logger.Error("failed to stream export", "artifact_id", id, "error", err)
	}
}

type evaluateResponse struct {
	Evaluation evaluate.Result         `json:"evaluation"`
	Quality    evaluate.QualityResult  `json:"quality"`
	Compliance policy.ComplianceResult `json:"compliance"`
}

func (s *Server) handleArtifactEvaluate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	artifact := s.loadArtifact(w, r, id)
	if artifact == nil {
		return
	}
	compliance, err := s.policy.CheckCompliance(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, evaluateResponse{
		Evaluation: s.evaluator.Evaluate(r.Context(), artifact),
		Quality:    evaluate.CheckMinimumQuality(artifact),
		Compliance: compliance,
	})
}

func (s *Server) handleArtifactCompliance(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if artifact := s.loadArtifact(w, r, id); artifact == nil {
		return
	}

	compliance, err := s.policy.CheckCompliance(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	requiresApproval, err := s.policy.RequiresApproval(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	riskLevel, err := s.policy.RiskLevel(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, complianceResponse{
		ArtifactID:       id,
		Compliant:        compliance.Compliant,
		Violations:       compliance.Violations,
		RequiresApproval: requiresApproval,
		RiskLevel:        riskLevel,
	})
}
