// Package policy runs deterministic compliance and approval checks over
// generated artifacts before they leave the system.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"teachassist/internal/intent"
	"teachassist/internal/services"
	"teachassist/internal/store"
)

// piiPatterns are checked in order against artifact content. One
// violation is reported per matching pattern regardless of match count.
var piiPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"phone", regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{"street address", regexp.MustCompile(`(?i)\b\d{1,5}\s\w+\s(?:St|Ave|Blvd|Dr|Rd|Ln|Way)\b`)},
}

// highRiskIntents require teacher approval regardless of content.
var highRiskIntents = map[intent.Intent]bool{
	intent.IEPSupport: true,
}

// highRiskKeywords trigger approval when present in artifact content.
var highRiskKeywords = []string{
	"iep",
	"individualized education",
	"special education",
	"sped",
	"504 plan",
	"disability",
	"accommodation plan",
}

// ComplianceResult is the outcome of a compliance check.
type ComplianceResult struct {
	Compliant  bool     `json:"compliant"`
	Violations []string `json:"violations"`
}

// Service performs policy checks.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService constructs the policy checker.
func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger.With("component", "policy")}
}

// CheckCompliance scans an artifact's content for PII. A missing artifact
// is non-compliant with a single violation rather than an error.
func (s *Service) CheckCompliance(ctx context.Context, artifactID string) (ComplianceResult, error) {
	artifact, err := s.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return ComplianceResult{}, services.Wrap(services.ErrTransient, "policy", "check compliance", "load artifact", err)
	}
	if artifact == nil {
		return ComplianceResult{Compliant: false, Violations: []string{"artifact not found"}}, nil
	}

	violations := []string{}
	for _, pii := range piiPatterns {
		if pii.pattern.MatchString(artifact.Content) {
			violations = append(violations, fmt.Sprintf("PII detected: %s", pii.name))
		}
	}
	if len(violations) > 0 {
		s.logger.Warn("compliance violations", "artifact_id", artifactID, "count", len(violations))
	}
	return ComplianceResult{Compliant: len(violations) == 0, Violations: violations}, nil
}

// RequiresApproval reports whether an artifact needs explicit teacher
// sign-off: true when the owning request has a high-risk intent or the
// content mentions any high-risk keyword. Missing artifact or request
// yields false.
func (s *Service) RequiresApproval(ctx context.Context, artifactID string) (bool, error) {
	artifact, err := s.store.GetArtifact(ctx, artifactID)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "policy", "requires approval", "load artifact", err)
	}
	if artifact == nil {
		return false, nil
	}
	req, err := s.store.GetRequest(ctx, artifact.RequestID)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "policy", "requires approval", "load request", err)
	}
	if req == nil {
		return false, nil
	}

	if highRiskIntents[req.Intent] {
		return true, nil
	}
	lower := strings.ToLower(artifact.Content)
	for _, keyword := range highRiskKeywords {
		if strings.Contains(lower, keyword) {
			return true, nil
		}
	}
	return false, nil
}

// RiskLevel derives the audit risk grade for an artifact from the same
// signals as RequiresApproval.
func (s *Service) RiskLevel(ctx context.Context, artifactID string) (store.RiskLevel, error) {
	required, err := s.RequiresApproval(ctx, artifactID)
	if err != nil {
		return store.RiskLow, err
	}
	if required {
		return store.RiskHigh, nil
	}
	return store.RiskLow, nil
}
