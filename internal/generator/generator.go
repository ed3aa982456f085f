// Package generator runs a plan's task nodes against the language model
// and persists the resulting artifacts, including tier variants and a
// translation derived from the primary output.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"teachassist/internal/attachments"
	"teachassist/internal/config"
	"teachassist/internal/llm"
	"teachassist/internal/prompts"
	"teachassist/internal/services"
	"teachassist/internal/store"
)

// Tier variants generated from each primary artifact. The on-level tier
// is the primary itself.
var variantTiers = []store.Tier{store.TierApproaching, store.TierAdvanced}

// Service generates artifacts for plans.
type Service struct {
	store    *store.Store
	provider llm.Provider
	library  prompts.Library
	cfg      *config.Config
	logger   *slog.Logger
}

// NewService constructs the generator.
func NewService(st *store.Store, provider llm.Provider, library prompts.Library, cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		provider: provider,
		library:  library,
		cfg:      cfg,
		logger:   logger.With("component", "generator"),
	}
}

// GenerateArtifacts executes every task node of the plan in order. A node
// failure aborts the pass without rolling back artifacts already
// persisted. After all nodes complete, tier variants and a translation
// are derived from the first artifact on a best effort basis.
func (s *Service) GenerateArtifacts(ctx context.Context, plan *store.Plan) ([]*store.Artifact, error) {
	if plan == nil {
		return nil, services.Wrap(services.ErrValidation, "generator", "generate", "plan required", nil)
	}
	if len(plan.TaskNodes) == 0 {
		return nil, services.Wrap(services.ErrValidation, "generator", "generate",
			fmt.Sprintf("plan %s has no task nodes", plan.ID), nil)
	}
	req, err := s.store.GetRequest(ctx, plan.RequestID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "generator", "generate", "load request", err)
	}
	if req == nil {
		return nil, services.Wrap(services.ErrNotFound, "generator", "generate",
			fmt.Sprintf("request %s not found", plan.RequestID), nil)
	}
	logger := s.logger
	if jobID, ok := services.JobIDFromContext(ctx); ok {
		logger = logger.With("job_id", jobID)
	}

	referenceText := s.gatherAttachmentText(ctx, req)
	persona := s.library.Persona(req.Intent)
	userPrompt := req.PromptText
	if referenceText != "" {
		userPrompt = fmt.Sprintf("%s\n\n--- Reference Material ---\n%s\n--- End Reference Material ---", req.PromptText, referenceText)
	}

	var artifacts []*store.Artifact
	for _, node := range plan.TaskNodes {
		if err := s.store.TransitionNode(ctx, plan.ID, node.NodeID, store.NodeRunning); err != nil {
			return artifacts, services.Wrap(services.ErrTransient, "generator", "generate", "mark node running", err)
		}

		resp, err := s.provider.Generate(ctx, llm.Request{SystemPrompt: persona, Prompt: userPrompt})
		if err != nil {
			if ferr := s.store.TransitionNode(ctx, plan.ID, node.NodeID, store.NodeFailed); ferr != nil {
				s.logger.Error("mark node failed", "plan_id", plan.ID, "node_id", node.NodeID, "error", ferr)
			}
			return artifacts, services.Wrap(services.ErrProvider, "generator", "generate",
				fmt.Sprintf("node %s (%s)", node.NodeID, node.TaskType), err)
		}

		artifact := &store.Artifact{
			RequestID: plan.RequestID,
			PlanID:    plan.ID,
			Medium:    store.MediumMarkdown,
			Language:  "en",
			Content:   resp.Content,
			Meta: store.ArtifactMeta{
				Kind:             store.MetaPrimary,
				TaskType:         node.TaskType,
				Model:            resp.Model,
				NodeID:           node.NodeID,
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
			},
		}
		if err := s.store.CreateArtifact(ctx, artifact); err != nil {
			if ferr := s.store.TransitionNode(ctx, plan.ID, node.NodeID, store.NodeFailed); ferr != nil {
				s.logger.Error("mark node failed", "plan_id", plan.ID, "node_id", node.NodeID, "error", ferr)
			}
			return artifacts, services.Wrap(services.ErrTransient, "generator", "generate", "persist artifact", err)
		}
		artifacts = append(artifacts, artifact)

		if err := s.store.TransitionNode(ctx, plan.ID, node.NodeID, store.NodeCompleted); err != nil {
			return artifacts, services.Wrap(services.ErrTransient, "generator", "generate", "mark node completed", err)
		}
		logger.Info("node completed", "plan_id", plan.ID, "node_id", node.NodeID, "task_type", node.TaskType)
	}

	if err := s.store.MarkPlanCompleted(ctx, plan.ID, time.Now().UTC()); err != nil {
		return artifacts, services.Wrap(services.ErrTransient, "generator", "generate", "mark plan completed", err)
	}

	primary := artifacts[0]
	artifacts = append(artifacts, s.generateTierVariants(ctx, req, primary)...)
	if translation := s.generateTranslation(ctx, primary); translation != nil {
		artifacts = append(artifacts, translation)
	}
	return artifacts, nil
}

// gatherAttachmentText parses every attachment and concatenates the
// results. Parse failures are logged and skipped.
func (s *Service) gatherAttachmentText(ctx context.Context, req *store.Request) string {
	rows, err := s.store.ListAttachmentsByRequest(ctx, req.ID)
	if err != nil {
		s.logger.Warn("list attachments", "request_id", req.ID, "error", err)
		return ""
	}
	var sections []string
	for _, row := range rows {
		parsed := attachments.Parse(row.StoragePath, row.MimeType)
		if uerr := s.store.SetAttachmentParseResult(ctx, row.ID, parsed.ParseSuccess); uerr != nil {
			s.logger.Warn("record parse result", "attachment_id", row.ID, "error", uerr)
		}
		if !parsed.ParseSuccess {
			s.logger.Warn("attachment parse failed", "attachment_id", row.ID, "file_name", row.FileName)
			continue
		}
		if text := strings.TrimSpace(parsed.TextContent); text != "" {
			sections = append(sections, fmt.Sprintf("[%s]\n%s", row.FileName, text))
		}
	}
	return strings.Join(sections, "\n\n")
}

// generateTierVariants derives the approaching and advanced tiers from
// the primary artifact. Failures are logged and discarded.
func (s *Service) generateTierVariants(ctx context.Context, req *store.Request, primary *store.Artifact) []*store.Artifact {
	tmpl, ok := s.library.Template(prompts.TemplateDifferentiation)
	if !ok {
		s.logger.Error("differentiation template missing")
		return nil
	}
	grade, subject := s.classContext(ctx, req)

	var variants []*store.Artifact
	for _, tier := range variantTiers {
		prompt := tmpl.Render(map[string]string{
			"tier":    string(tier),
			"content": primary.Content,
			"grade":   grade,
			"subject": subject,
		})
		resp, err := s.provider.Generate(ctx, llm.Request{SystemPrompt: tmpl.SystemPrompt, Prompt: prompt})
		if err != nil {
			s.logger.Warn("tier variant failed", "artifact_id", primary.ID, "tier", string(tier), "error", err)
			continue
		}
		variant := &store.Artifact{
			RequestID: primary.RequestID,
			PlanID:    primary.PlanID,
			Medium:    store.MediumMarkdown,
			Language:  "en",
			Tier:      tier,
			Content:   resp.Content,
			Meta: store.ArtifactMeta{
				Kind:             store.MetaTiering,
				TaskType:         primary.Meta.TaskType,
				Model:            resp.Model,
				Tier:             tier,
				SourceArtifactID: primary.ID,
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
			},
		}
		if err := s.store.CreateArtifact(ctx, variant); err != nil {
			s.logger.Warn("persist tier variant", "artifact_id", primary.ID, "tier", string(tier), "error", err)
			continue
		}
		variants = append(variants, variant)
	}
	return variants
}

// generateTranslation derives one translation of the primary artifact
// into the configured target language. Failures are logged and discarded.
func (s *Service) generateTranslation(ctx context.Context, primary *store.Artifact) *store.Artifact {
	targetCode := s.cfg.Generation.TranslationLanguage
	if targetCode == "" {
		return nil
	}
	tmpl, ok := s.library.Template(prompts.TemplateTranslation)
	if !ok {
		s.logger.Error("translation template missing")
		return nil
	}

	prompt := tmpl.Render(map[string]string{
		"source_language": "English",
		"target_language": languageName(targetCode),
		"content":         primary.Content,
	})
	resp, err := s.provider.Generate(ctx, llm.Request{SystemPrompt: tmpl.SystemPrompt, Prompt: prompt})
	if err != nil {
		s.logger.Warn("translation failed", "artifact_id", primary.ID, "target", targetCode, "error", err)
		return nil
	}
	translation := &store.Artifact{
		RequestID: primary.RequestID,
		PlanID:    primary.PlanID,
		Medium:    store.MediumMarkdown,
		Language:  targetCode,
		Content:   resp.Content,
		Meta: store.ArtifactMeta{
			Kind:             store.MetaTranslation,
			TaskType:         primary.Meta.TaskType,
			Model:            resp.Model,
			SourceArtifactID: primary.ID,
			TargetLanguage:   targetCode,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	if err := s.store.CreateArtifact(ctx, translation); err != nil {
		s.logger.Warn("persist translation", "artifact_id", primary.ID, "target", targetCode, "error", err)
		return nil
	}
	return translation
}

// classContext pulls grade and subject from the request's class profile
// when one is linked.
func (s *Service) classContext(ctx context.Context, req *store.Request) (grade, subject string) {
	grade, subject = "6-12", "general"
	if req.ClassID == "" {
		return grade, subject
	}
	class, err := s.store.GetClassProfile(ctx, req.ClassID)
	if err != nil || class == nil {
		return grade, subject
	}
	if class.Grade > 0 {
		grade = strconv.Itoa(class.Grade)
	}
	if class.Subject != "" {
		subject = class.Subject
	}
	return grade, subject
}

// languageName renders a BCP 47 code as an English display name for use
// inside prompts, falling back to the raw code when it cannot be parsed.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
