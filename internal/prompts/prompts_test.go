package prompts_test

import (
	"strings"
	"testing"

	"teachassist/internal/intent"
	"teachassist/internal/prompts"
)

func TestLibraryTemplates(t *testing.T) {
	lib := prompts.NewLibrary()

	for _, id := range []string{prompts.TemplateLessonPlan, prompts.TemplateDifferentiation, prompts.TemplateTranslation} {
		tmpl, ok := lib.Template(id)
		if !ok {
			t.Fatalf("missing template %q", id)
		}
		if tmpl.SystemPrompt == "" || tmpl.UserTemplate == "" {
			t.Fatalf("template %q has empty prompt fields", id)
		}
		for _, variable := range tmpl.Variables {
			if !strings.Contains(tmpl.UserTemplate, "{{"+variable+"}}") {
				t.Errorf("template %q declares variable %q but does not reference it", id, variable)
			}
		}
	}

	if _, ok := lib.Template("no-such-template"); ok {
		t.Fatal("unknown template id should not resolve")
	}
}

func TestRenderSubstitutesAllOccurrences(t *testing.T) {
	lib := prompts.NewLibrary()
	tmpl, _ := lib.Template(prompts.TemplateDifferentiation)

	rendered := tmpl.Render(map[string]string{
		"tier":    "approaching",
		"content": "# Fractions Worksheet",
		"grade":   "6",
		"subject": "math",
	})
	if strings.Contains(rendered, "{{") {
		t.Fatalf("rendered template still has placeholders: %q", rendered)
	}
	if strings.Count(rendered, "approaching") != 2 {
		t.Fatalf("tier should be substituted everywhere it appears: %q", rendered)
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	lib := prompts.NewLibrary()
	tmpl, _ := lib.Template(prompts.TemplateTranslation)

	rendered := tmpl.Render(map[string]string{"content": "Hello"})
	if !strings.Contains(rendered, "{{target_language}}") {
		t.Fatalf("unfilled placeholder should remain visible: %q", rendered)
	}
}

func TestPersonaCoversEveryIntent(t *testing.T) {
	lib := prompts.NewLibrary()
	for _, in := range intent.All() {
		if lib.Persona(in) == "" {
			t.Errorf("intent %s has no persona", in)
		}
	}
	if lib.Persona(intent.Intent("unknown")) != lib.Persona(intent.Other) {
		t.Fatal("unmapped intents should fall back to the generic persona")
	}
}
