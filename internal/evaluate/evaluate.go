// Package evaluate scores generated artifacts, combining an LLM-judged
// rubric with deterministic minimum-quality checks.
package evaluate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"teachassist/internal/llm"
	"teachassist/internal/store"
)

const rubricSystemPrompt = `You are an expert educational content evaluator for US public schools (Grades 6-12).

Evaluate the provided teaching material on these 5 criteria, each scored 1-5:

1. **Content Accuracy** - Is the content factually correct and grade-appropriate?
2. **Pedagogical Structure** - Does it follow sound instructional design (objectives, scaffolding, assessment)?
3. **Differentiation** - Does it address diverse learners (ELL, SPED, advanced)?
4. **Clarity** - Is the language clear, well-organized, and easy to follow?
5. **Completeness** - Does it include all necessary components for the requested material type?

Respond in EXACTLY this JSON format (no markdown wrapping):
{
  "criteria": [
    {"name": "Content Accuracy", "score": 4, "comment": "..."},
    {"name": "Pedagogical Structure", "score": 3, "comment": "..."},
    {"name": "Differentiation", "score": 3, "comment": "..."},
    {"name": "Clarity", "score": 4, "comment": "..."},
    {"name": "Completeness", "score": 4, "comment": "..."}
  ],
  "feedback": "Brief overall feedback here"
}`

// JSONCompleter is the slice of the model client evaluation needs.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Criterion is one scored rubric dimension.
type Criterion struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Result is one rubric evaluation. Passing means the average score is at
// least 3.
type Result struct {
	ArtifactID   string      `json:"artifact_id"`
	OverallScore float64     `json:"overall_score"`
	Criteria     []Criterion `json:"criteria"`
	Passing      bool        `json:"passing"`
	Feedback     string      `json:"feedback"`
}

// QualityResult is the outcome of the deterministic checks.
type QualityResult struct {
	Passing bool     `json:"passing"`
	Issues  []string `json:"issues"`
}

// Service evaluates artifacts.
type Service struct {
	completer JSONCompleter
	logger    *slog.Logger
}

// NewService constructs the evaluator.
func NewService(completer JSONCompleter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{completer: completer, logger: logger.With("component", "evaluate")}
}

// Evaluate runs the LLM rubric over the artifact. Any failure degrades to
// a passing default so evaluation never blocks delivery.
func (s *Service) Evaluate(ctx context.Context, artifact *store.Artifact) Result {
	fallback := Result{
		ArtifactID:   artifact.ID,
		OverallScore: 3,
		Criteria:     []Criterion{},
		Passing:      true,
		Feedback:     "Evaluation could not be completed automatically.",
	}

	content, err := s.completer.CompleteJSON(ctx, rubricSystemPrompt,
		fmt.Sprintf("Evaluate the following teaching material:\n\n%s", artifact.Content))
	if err != nil {
		s.logger.Warn("rubric call failed", "artifact_id", artifact.ID, "error", err)
		return fallback
	}

	var parsed struct {
		Criteria []Criterion `json:"criteria"`
		Feedback string      `json:"feedback"`
	}
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		s.logger.Warn("rubric payload unparseable", "artifact_id", artifact.ID, "error", err)
		return fallback
	}
	if len(parsed.Criteria) == 0 {
		return fallback
	}

	total := 0
	for _, criterion := range parsed.Criteria {
		total += criterion.Score
	}
	average := float64(total) / float64(len(parsed.Criteria))
	return Result{
		ArtifactID:   artifact.ID,
		OverallScore: math.Round(average*10) / 10,
		Criteria:     parsed.Criteria,
		Passing:      average >= 3,
		Feedback:     parsed.Feedback,
	}
}

// CheckMinimumQuality runs the deterministic checks: minimum length, at
// least one heading, and no truncation marker at the end.
func CheckMinimumQuality(artifact *store.Artifact) QualityResult {
	issues := []string{}
	if len(artifact.Content) < 100 {
		issues = append(issues, "content is too short (< 100 characters)")
	}
	if !strings.Contains(artifact.Content, "#") {
		issues = append(issues, "no headings found; content may lack structure")
	}
	if strings.HasSuffix(artifact.Content, "...") || strings.HasSuffix(artifact.Content, "…") {
		issues = append(issues, "content appears to be truncated")
	}
	return QualityResult{Passing: len(issues) == 0, Issues: issues}
}
