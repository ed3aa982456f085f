// Package intent classifies free-text teacher prompts into a fixed set of
// material categories using keyword matching with a priority order.
package intent

import "strings"

// Intent is the classified category of a teacher's prompt.
type Intent string

const (
	LessonPlan   Intent = "lesson_plan"
	Worksheet    Intent = "worksheet"
	Assessment   Intent = "assessment"
	SlideDeck    Intent = "slide_deck"
	ParentLetter Intent = "parent_letter"
	IEPSupport   Intent = "iep_support"
	Translation  Intent = "translation"
	SeatingChart Intent = "seating_chart"
	Rubric       Intent = "rubric"
	Other        Intent = "other"
)

// priorityOrder lists intents most specific first. When a prompt matches
// keywords from several categories the earliest match wins, which biases
// classification toward the higher-stakes category (a prompt mentioning
// both "lesson" and "IEP" is IEP support, not a lesson plan).
var priorityOrder = []Intent{
	IEPSupport,
	SeatingChart,
	SlideDeck,
	ParentLetter,
	LessonPlan,
	Worksheet,
	Assessment,
	Translation,
	Rubric,
}

var keywords = map[Intent][]string{
	LessonPlan:   {"lesson plan", "lesson", "unit plan", "teaching plan"},
	Worksheet:    {"worksheet", "handout", "practice sheet", "activity sheet"},
	Assessment:   {"assessment", "test", "quiz", "exam", "evaluation"},
	SlideDeck:    {"slide", "presentation", "powerpoint", "pptx", "slide deck"},
	ParentLetter: {"parent", "family", "letter home", "guardian", "newsletter"},
	IEPSupport:   {"iep", "accommodation", "special education", "sped", "504", "modification", "individualized education"},
	Translation:  {"translate", "translation", "spanish", "bilingual", "multilingual"},
	SeatingChart: {"seating chart", "seating arrangement", "desk arrangement"},
	Rubric:       {"rubric", "scoring guide", "grading criteria"},
}

// Classify maps a prompt to the first intent in priority order with a
// case-insensitive substring match. Prompts matching nothing return Other.
func Classify(prompt string) Intent {
	lower := strings.ToLower(prompt)
	for _, candidate := range priorityOrder {
		for _, keyword := range keywords[candidate] {
			if strings.Contains(lower, keyword) {
				return candidate
			}
		}
	}
	return Other
}

// All returns every intent in priority order, Other last.
func All() []Intent {
	out := make([]Intent, len(priorityOrder), len(priorityOrder)+1)
	copy(out, priorityOrder)
	return append(out, Other)
}

// Parse converts a string into a known Intent.
func Parse(value string) (Intent, bool) {
	normalized := Intent(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range All() {
		if candidate == normalized {
			return candidate, true
		}
	}
	return "", false
}
