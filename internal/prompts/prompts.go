// Package prompts holds the prompt templates and per-intent personas used
// when calling the language model. A Library is immutable after
// construction and passed by value to the services that need it.
package prompts

import (
	"sort"
	"strings"

	"teachassist/internal/intent"
)

// Template is one reusable prompt with {{variable}} placeholders in its
// user portion.
type Template struct {
	ID           string
	Name         string
	Description  string
	SystemPrompt string
	UserTemplate string
	Variables    []string
}

// Render substitutes the given variables into the user template. Unknown
// placeholders are left in place so missing inputs are visible in logs.
func (t Template) Render(vars map[string]string) string {
	rendered := t.UserTemplate
	for key, value := range vars {
		rendered = strings.ReplaceAll(rendered, "{{"+key+"}}", value)
	}
	return rendered
}

// Template ids.
const (
	TemplateLessonPlan      = "lesson-plan"
	TemplateDifferentiation = "differentiation"
	TemplateTranslation     = "translation"
)

// Library is the fixed set of templates and personas.
type Library struct {
	templates map[string]Template
	personas  map[intent.Intent]string
}

// NewLibrary constructs the built-in library.
func NewLibrary() Library {
	lib := Library{
		templates: make(map[string]Template),
		personas:  make(map[intent.Intent]string),
	}
	for _, t := range builtinTemplates {
		lib.templates[t.ID] = t
	}
	for in, persona := range builtinPersonas {
		lib.personas[in] = persona
	}
	return lib
}

// Template returns the template with the given id.
func (l Library) Template(id string) (Template, bool) {
	t, ok := l.templates[id]
	return t, ok
}

// Templates returns all templates sorted by id.
func (l Library) Templates() []Template {
	out := make([]Template, 0, len(l.templates))
	for _, t := range l.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Persona returns the system prompt for an intent, falling back to the
// generic materials persona for unmapped intents.
func (l Library) Persona(in intent.Intent) string {
	if persona, ok := l.personas[in]; ok {
		return persona
	}
	return l.personas[intent.Other]
}

var builtinTemplates = []Template{
	{
		ID:          TemplateLessonPlan,
		Name:        "Lesson Plan Generator",
		Description: "Generates a standards-aligned lesson plan",
		SystemPrompt: "You are an expert curriculum designer for US public schools (Grades 6-12). " +
			"Generate structured, standards-aligned lesson plans.",
		UserTemplate: `Create a lesson plan for the following:
Subject: {{subject}}
Grade: {{grade}}
Topic: {{topic}}
Period Length: {{period_length}} minutes
Special Considerations: {{considerations}}

Include: learning objectives, materials, warm-up, direct instruction, guided practice, independent practice, assessment, and closure.`,
		Variables: []string{"subject", "grade", "topic", "period_length", "considerations"},
	},
	{
		ID:          TemplateDifferentiation,
		Name:        "Differentiation Adapter",
		Description: "Adapts content for approaching, on-level, and advanced tiers",
		SystemPrompt: "You are a differentiation specialist. Adapt the provided content for three tiers " +
			"while maintaining the same learning objectives.",
		UserTemplate: `Adapt the following content for the {{tier}} tier:
Original Content:
{{content}}

Grade Level: {{grade}}
Subject: {{subject}}

Provide appropriately scaffolded/extended content for the {{tier}} level.`,
		Variables: []string{"tier", "content", "grade", "subject"},
	},
	{
		ID:          TemplateTranslation,
		Name:        "Multilingual Translator",
		Description: "Translates teaching materials while preserving pedagogical intent",
		SystemPrompt: "You are a professional educational translator. Translate content preserving " +
			"pedagogical intent, grade-appropriate language, and formatting.",
		UserTemplate: `Translate the following educational content from {{source_language}} to {{target_language}}:

{{content}}

Maintain the original formatting, pedagogical structure, and grade-appropriate vocabulary.`,
		Variables: []string{"source_language", "target_language", "content"},
	},
}

var builtinPersonas = map[intent.Intent]string{
	intent.LessonPlan: "You are an expert curriculum designer for US public schools (Grades 6-12). " +
		"Generate structured, standards-aligned lesson plans in Markdown.",
	intent.Worksheet: "You are an experienced classroom teacher creating practice worksheets. " +
		"Produce clear, numbered exercises with an answer key, in Markdown.",
	intent.Assessment: "You are an assessment specialist. Write aligned quiz and test items with " +
		"point values and an answer key, in Markdown.",
	intent.SlideDeck: "You are an instructional designer building lecture slides. Structure the " +
		"output as Markdown with one # or ## heading per slide followed by bullets.",
	intent.ParentLetter: "You are a teacher writing home to families. Use a warm, plain-language " +
		"tone at an accessible reading level, in Markdown.",
	intent.IEPSupport: "You are a special education specialist. Summarize accommodations and " +
		"supports clearly and respectfully, in Markdown. Never include student-identifying details.",
	intent.Translation: "You are a professional educational translator. Translate content preserving " +
		"pedagogical intent, grade-appropriate language, and formatting.",
	intent.SeatingChart: "You are an experienced teacher arranging a classroom. Propose a seating " +
		"layout as a Markdown table with a short rationale.",
	intent.Rubric: "You are an assessment specialist. Build analytic rubrics as Markdown tables " +
		"with criteria rows and performance-level columns.",
	intent.Other: "You are a helpful instructional assistant for teachers. Produce well-structured " +
		"Markdown teaching materials.",
}
