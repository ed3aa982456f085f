package intent_test

import (
	"testing"

	"teachassist/internal/intent"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		prompt string
		want   intent.Intent
	}{
		{"lesson plan", "Create a 45-minute lesson plan for 8th grade math", intent.LessonPlan},
		{"worksheet", "I need a practice sheet on fractions", intent.Worksheet},
		{"assessment", "Write a quiz covering chapter 4", intent.Assessment},
		{"slide deck", "Build a PowerPoint about the water cycle", intent.SlideDeck},
		{"parent letter", "Draft a letter home about the field trip", intent.ParentLetter},
		{"iep", "Help with IEP accommodations for a student with dyslexia", intent.IEPSupport},
		{"translation", "Translate this handout to Spanish", intent.Worksheet},
		{"translation only", "Can you translate these directions?", intent.Translation},
		{"seating", "Make a seating chart for 4th period", intent.SeatingChart},
		{"rubric", "Create a scoring guide for the essay", intent.Rubric},
		{"case insensitive", "CREATE A LESSON PLAN", intent.LessonPlan},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := intent.Classify(tc.prompt); got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.prompt, got, tc.want)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// IEP keywords outrank every co-occurring category.
	prompts := []string{
		"Write a lesson plan with IEP accommodations",
		"Worksheet for my special education students",
		"Quiz for a student with a 504 plan",
	}
	for _, prompt := range prompts {
		if got := intent.Classify(prompt); got != intent.IEPSupport {
			t.Fatalf("Classify(%q) = %s, want iep_support", prompt, got)
		}
	}
}

func TestClassifyFallback(t *testing.T) {
	if got := intent.Classify("please help me with something unusual"); got != intent.Other {
		t.Fatalf("expected fallback intent, got %s", got)
	}
	if got := intent.Classify(""); got != intent.Other {
		t.Fatalf("expected fallback intent for empty prompt, got %s", got)
	}
}

func TestParse(t *testing.T) {
	if got, ok := intent.Parse(" Lesson_Plan "); !ok || got != intent.LessonPlan {
		t.Fatalf("Parse failed: %v %v", got, ok)
	}
	if _, ok := intent.Parse("unknown"); ok {
		t.Fatal("expected parse failure for unknown intent")
	}
}
