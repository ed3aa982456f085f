package generator_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"teachassist/internal/generator"
	"teachassist/internal/intent"
	"teachassist/internal/llm"
	"teachassist/internal/logging"
	"teachassist/internal/prompts"
	"teachassist/internal/services"
	"teachassist/internal/store"
	"teachassist/internal/testsupport"
)

// scriptedProvider returns canned content and can fail selected calls.
type scriptedProvider struct {
	calls   []llm.Request
	failOn  func(call int, req llm.Request) error
	content string
}

func (p *scriptedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	call := len(p.calls)
	p.calls = append(p.calls, req)
	if p.failOn != nil {
		if err := p.failOn(call, req); err != nil {
			return nil, err
		}
	}
	content := p.content
	if content == "" {
		content = fmt.Sprintf("# Generated\n\nCall %d output body.", call)
	}
	return &llm.Response{Content: content, Model: "scripted-v1", Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 20}}, nil
}

func newGenerator(t *testing.T, provider llm.Provider) (*generator.Service, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := generator.NewService(st, provider, prompts.NewLibrary(), cfg, logging.NewNop())
	return svc, st
}

func TestGenerateArtifactsFullRun(t *testing.T) {
	provider := &scriptedProvider{}
	svc, st := newGenerator(t, provider)
	ctx := context.Background()

	req := testsupport.NewRequest(t, st, "teacher-1", "Create a lesson plan on photosynthesis", intent.LessonPlan)
	plan := testsupport.NewPlan(t, st, req.ID, "generate-lesson-plan")

	artifacts, err := svc.GenerateArtifacts(ctx, plan)
	if err != nil {
		t.Fatalf("GenerateArtifacts: %v", err)
	}
	// 1 primary + 2 tiers + 1 translation.
	if len(artifacts) != 4 {
		t.Fatalf("expected 4 artifacts, got %d", len(artifacts))
	}
	primary := artifacts[0]
	if primary.Meta.Kind != store.MetaPrimary || primary.Meta.NodeID != "node_1" {
		t.Fatalf("first artifact should be primary: %+v", primary.Meta)
	}
	if artifacts[1].Tier != store.TierApproaching || artifacts[2].Tier != store.TierAdvanced {
		t.Fatalf("tier order mismatch: %s, %s", artifacts[1].Tier, artifacts[2].Tier)
	}
	for _, tierArtifact := range artifacts[1:3] {
		if tierArtifact.Meta.Kind != store.MetaTiering || tierArtifact.Meta.SourceArtifactID != primary.ID {
			t.Fatalf("tier metadata mismatch: %+v", tierArtifact.Meta)
		}
		if tierArtifact.RequestID != req.ID || tierArtifact.PlanID != plan.ID {
			t.Fatalf("tier artifact ids mismatch: %+v", tierArtifact)
		}
	}
	translation := artifacts[3]
	if translation.Meta.Kind != store.MetaTranslation || translation.Language != "es" || translation.Meta.TargetLanguage != "es" {
		t.Fatalf("translation metadata mismatch: %+v", translation)
	}

	stored, err := st.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.CompletedAt == nil {
		t.Fatal("plan completed_at should be set")
	}
	if stored.DerivedStatus() != store.StatusCompleted {
		t.Fatalf("expected completed status, got %s", stored.DerivedStatus())
	}

	// The translation prompt should name the language, not the code.
	last := provider.calls[len(provider.calls)-1]
	if !strings.Contains(last.Prompt, "Spanish") {
		t.Fatalf("translation prompt should use the display name: %q", last.Prompt)
	}
}

func TestGenerateArtifactsMissingRequest(t *testing.T) {
	svc, _ := newGenerator(t, &scriptedProvider{})

	plan := &store.Plan{
		ID:        "plan-x",
		RequestID: "no-such-request",
		TaskNodes: []store.TaskNode{{NodeID: "node_1", TaskType: "generate-generic", Status: store.NodePending}},
	}
	_, err := svc.GenerateArtifacts(context.Background(), plan)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGenerateArtifactsRejectsEmptyPlan(t *testing.T) {
	svc, st := newGenerator(t, &scriptedProvider{})
	req := testsupport.NewRequest(t, st, "teacher-1", "anything", intent.Other)

	_, err := svc.GenerateArtifacts(context.Background(), &store.Plan{ID: "p", RequestID: req.ID})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateArtifactsNodeFailureAborts(t *testing.T) {
	provider := &scriptedProvider{
		failOn: func(call int, req llm.Request) error {
			return errors.New("model unavailable")
		},
	}
	svc, st := newGenerator(t, provider)
	ctx := context.Background()

	req := testsupport.NewRequest(t, st, "teacher-1", "worksheet on decimals", intent.Worksheet)
	plan := testsupport.NewPlan(t, st, req.ID, "generate-worksheet")

	_, err := svc.GenerateArtifacts(ctx, plan)
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}

	stored, err := st.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.CompletedAt != nil {
		t.Fatal("failed plan should not have completed_at")
	}
	if stored.DerivedStatus() != store.StatusFailed {
		t.Fatalf("expected failed status, got %s", stored.DerivedStatus())
	}
	node := stored.Node("node_1")
	if node.Status != store.NodeFailed || node.CompletedAt == nil {
		t.Fatalf("node should be failed with a timestamp: %+v", node)
	}
}

func TestGenerateArtifactsVariantFailuresAreDiscarded(t *testing.T) {
	provider := &scriptedProvider{
		failOn: func(call int, req llm.Request) error {
			// First call is the primary; everything after is a variant.
			if call > 0 {
				return errors.New("model unavailable")
			}
			return nil
		},
	}
	svc, st := newGenerator(t, provider)
	ctx := context.Background()

	req := testsupport.NewRequest(t, st, "teacher-1", "rubric for lab reports", intent.Rubric)
	plan := testsupport.NewPlan(t, st, req.ID, "generate-rubric")

	artifacts, err := svc.GenerateArtifacts(ctx, plan)
	if err != nil {
		t.Fatalf("variant failures should not fail the run: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected only the primary artifact, got %d", len(artifacts))
	}

	stored, err := st.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.CompletedAt == nil || stored.DerivedStatus() != store.StatusCompleted {
		t.Fatal("plan should still complete when variants fail")
	}
}

func TestGenerateArtifactsIncludesAttachmentText(t *testing.T) {
	provider := &scriptedProvider{}
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := generator.NewService(st, provider, prompts.NewLibrary(), cfg, logging.NewNop())
	ctx := context.Background()

	req := testsupport.NewRequest(t, st, "teacher-1", "worksheet from this reading", intent.Worksheet)
	path := filepath.Join(t.TempDir(), "reading.txt")
	if err := os.WriteFile(path, []byte("The water cycle has three stages."), 0o644); err != nil {
		t.Fatalf("write attachment: %v", err)
	}
	att := &store.Attachment{RequestID: req.ID, FileName: "reading.txt", MimeType: "text/plain", StoragePath: path}
	if err := st.CreateAttachment(ctx, att); err != nil {
		t.Fatalf("CreateAttachment: %v", err)
	}
	missing := &store.Attachment{RequestID: req.ID, FileName: "gone.txt", MimeType: "text/plain", StoragePath: filepath.Join(t.TempDir(), "gone.txt")}
	if err := st.CreateAttachment(ctx, missing); err != nil {
		t.Fatalf("CreateAttachment: %v", err)
	}
	plan := testsupport.NewPlan(t, st, req.ID, "generate-worksheet")

	if _, err := svc.GenerateArtifacts(ctx, plan); err != nil {
		t.Fatalf("GenerateArtifacts: %v", err)
	}
	first := provider.calls[0]
	if !strings.Contains(first.Prompt, "The water cycle has three stages.") {
		t.Fatalf("attachment text missing from prompt: %q", first.Prompt)
	}
	if !strings.Contains(first.Prompt, "Reference Material") {
		t.Fatalf("reference delimiters missing from prompt: %q", first.Prompt)
	}

	rows, err := st.ListAttachmentsByRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("ListAttachmentsByRequest: %v", err)
	}
	for _, row := range rows {
		if row.FileName == "reading.txt" && !row.ParseSuccess {
			t.Fatal("parse success should be recorded for the good attachment")
		}
		if row.FileName == "gone.txt" && row.ParseSuccess {
			t.Fatal("parse failure should be recorded for the missing attachment")
		}
	}
}
