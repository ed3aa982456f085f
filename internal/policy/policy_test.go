package policy_test

import (
	"context"
	"testing"

	"teachassist/internal/intent"
	"teachassist/internal/logging"
	"teachassist/internal/policy"
	"teachassist/internal/store"
	"teachassist/internal/testsupport"
)

func seedArtifact(t *testing.T, st *store.Store, in intent.Intent, content string) *store.Artifact {
	t.Helper()
	ctx := context.Background()
	req := testsupport.NewRequest(t, st, "teacher-1", "prompt", in)
	plan := testsupport.NewPlan(t, st, req.ID, "generate-generic")
	artifact := &store.Artifact{
		RequestID: req.ID,
		PlanID:    plan.ID,
		Medium:    store.MediumMarkdown,
		Content:   content,
		Meta: store.ArtifactMeta{
			Kind:     store.MetaPrimary,
			TaskType: "generate-generic",
			NodeID:   "node_1",
		},
	}
	if err := st.CreateArtifact(ctx, artifact); err != nil {
		t.Fatalf("CreateArtifact: %v", err)
	}
	return artifact
}

func TestCheckComplianceFlagsSSN(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := policy.NewService(st, logging.NewNop())

	artifact := seedArtifact(t, st, intent.Other, "Student record 123-45-6789 should never appear.")
	result, err := svc.CheckCompliance(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("CheckCompliance: %v", err)
	}
	if result.Compliant {
		t.Fatal("content with an SSN should be non-compliant")
	}
	if len(result.Violations) != 2 {
		// The SSN digits also match the phone pattern.
		t.Fatalf("expected ssn and phone violations, got %v", result.Violations)
	}
}

func TestCheckComplianceCleanContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := policy.NewService(st, logging.NewNop())

	artifact := seedArtifact(t, st, intent.Other, "# Worksheet\n\nPractice problems about fractions.")
	result, err := svc.CheckCompliance(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("CheckCompliance: %v", err)
	}
	if !result.Compliant || len(result.Violations) != 0 {
		t.Fatalf("clean content should be compliant, got %+v", result)
	}
}

func TestCheckComplianceMissingArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := policy.NewService(st, logging.NewNop())

	result, err := svc.CheckCompliance(context.Background(), "no-such-artifact")
	if err != nil {
		t.Fatalf("CheckCompliance: %v", err)
	}
	if result.Compliant || len(result.Violations) != 1 {
		t.Fatalf("missing artifact should be non-compliant with one violation, got %+v", result)
	}
}

func TestRequiresApprovalHighRiskIntent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := policy.NewService(st, logging.NewNop())

	artifact := seedArtifact(t, st, intent.IEPSupport, "# Support Plan\n\nNothing keyword-like here.")
	required, err := svc.RequiresApproval(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("RequiresApproval: %v", err)
	}
	if !required {
		t.Fatal("iep_support requests always require approval")
	}

	level, err := svc.RiskLevel(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("RiskLevel: %v", err)
	}
	if level != store.RiskHigh {
		t.Fatalf("expected high risk, got %s", level)
	}
}

func TestRequiresApprovalKeywordInContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := policy.NewService(st, logging.NewNop())

	artifact := seedArtifact(t, st, intent.LessonPlan, "# Lesson Plan\n\nIncludes Special Education accommodations.")
	required, err := svc.RequiresApproval(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("RequiresApproval: %v", err)
	}
	if !required {
		t.Fatal("high-risk keyword in content should require approval")
	}
}

func TestRequiresApprovalLowRisk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := policy.NewService(st, logging.NewNop())

	artifact := seedArtifact(t, st, intent.Worksheet, "# Worksheet\n\nFraction practice.")
	required, err := svc.RequiresApproval(context.Background(), artifact.ID)
	if err != nil {
		t.Fatalf("RequiresApproval: %v", err)
	}
	if required {
		t.Fatal("ordinary worksheet should not require approval")
	}

	missing, err := svc.RequiresApproval(context.Background(), "no-such-artifact")
	if err != nil {
		t.Fatalf("RequiresApproval: %v", err)
	}
	if missing {
		t.Fatal("missing artifact should not require approval")
	}
}
