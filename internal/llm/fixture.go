package llm

import (
	"context"
	"fmt"
	"strings"

	"teachassist/internal/intent"
)

// FixtureModel is the model name reported by the offline provider.
const FixtureModel = "fixture-v1"

// FixtureProvider produces deterministic canned content without network
// access. It backs local development and tests when no API key is set.
type FixtureProvider struct{}

// NewFixtureProvider returns the offline provider.
func NewFixtureProvider() *FixtureProvider {
	return &FixtureProvider{}
}

// Generate classifies the prompt and returns the matching canned material.
func (p *FixtureProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content := fixtureContent(intent.Classify(req.Prompt), req.Prompt)
	return &Response{
		Content: content,
		Model:   FixtureModel,
		Usage: Usage{
			PromptTokens:     len(req.Prompt),
			CompletionTokens: len(content),
		},
	}, nil
}

// CompleteJSON returns a canned passing evaluation payload.
func (p *FixtureProvider) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return `{"score": 4, "passed": true, "feedback": "Fixture evaluation: content is well structured."}`, nil
}

func fixtureContent(in intent.Intent, prompt string) string {
	topic := fixtureTopic(prompt)
	switch in {
	case intent.LessonPlan:
		return fixtureLessonPlan(topic)
	case intent.Worksheet:
		return fixtureWorksheet(topic)
	case intent.Assessment:
		return fixtureAssessment(topic)
	case intent.SlideDeck:
		return fixtureSlideDeck(topic)
	case intent.ParentLetter:
		return fixtureParentLetter(topic)
	case intent.IEPSupport:
		return fixtureIEPSupport(topic)
	case intent.Translation:
		return fixtureTranslation(topic)
	case intent.SeatingChart:
		return fixtureSeatingChart(topic)
	case intent.Rubric:
		return fixtureRubric(topic)
	default:
		return fixtureGeneric(topic)
	}
}

func fixtureTopic(prompt string) string {
	cleaned := strings.TrimSpace(prompt)
	if len(cleaned) <= 80 {
		return cleaned
	}
	return cleaned[:80] + "..."
}

func fixtureLessonPlan(topic string) string {
	return fmt.Sprintf(`# Lesson Plan

## Topic
%s

## Learning Objectives
- Students will be able to understand and apply key concepts related to the topic
- Students will demonstrate comprehension through guided and independent practice
- Students will engage in collaborative discussion to deepen understanding

## Materials Needed
- Whiteboard and markers
- Student handouts (provided)
- Exit ticket template

## Warm-Up (10 minutes)
Begin with a think-pair-share activity on a question related to the topic.

## Direct Instruction (15 minutes)
Present the core concepts using visual aids and guided note-taking. Check for understanding at key points.

## Guided Practice (10 minutes)
Work through 2-3 example problems as a class. Provide sentence frames for ELL students.

## Independent Practice (10 minutes)
Students work individually on practice problems. Offer extension problems for advanced learners.

## Assessment & Closure (5 minutes)
Distribute exit tickets with 2-3 questions that assess the lesson objectives.

## Differentiation Notes
- **Approaching**: Provide graphic organizers and word banks
- **On-Level**: Standard lesson materials
- **Advanced**: Extension problems with higher-order thinking questions
`, topic)
}

func fixtureWorksheet(topic string) string {
	return fmt.Sprintf(`# Worksheet: %s

## Name: _________________ Date: _________________

### Part 1: Vocabulary (10 points)
Match each term with its correct definition.

1. _________________
2. _________________
3. _________________

### Part 2: Short Answer (20 points)
Answer each question in 2-3 complete sentences.

1. Explain the main idea in your own words.
2. Describe one real-world example of this concept.

### Part 3: Application (20 points)
Solve the following problems, showing all work.
`, topic)
}

func fixtureAssessment(topic string) string {
	return fmt.Sprintf(`# Assessment: %s

## Instructions
Read each question carefully. Answer all questions to the best of your ability.

### Section 1: Multiple Choice (2 points each)
1. Which of the following best describes the main concept?
   - A) First option
   - B) Second option
   - C) Third option
   - D) Fourth option

### Section 2: Short Answer (5 points each)
1. Explain the relationship between the key ideas in this unit.
2. Provide an example that demonstrates your understanding.

### Answer Key
1. B
`, topic)
}

func fixtureSlideDeck(topic string) string {
	return fmt.Sprintf(`# Slide Deck: %s

## Slide 1: Introduction
- Welcome and objectives for today
- What we will learn

## Slide 2: Key Concepts
- Core idea one
- Core idea two
- Core idea three

## Slide 3: Worked Example
- Step-by-step walkthrough
- Common mistakes to avoid

## Slide 4: Practice
- Try these problems with a partner

## Slide 5: Wrap-Up
- Summary of what we learned
- Exit ticket question
`, topic)
}

func fixtureParentLetter(topic string) string {
	return fmt.Sprintf(`# Letter to Families

Dear Families,

I hope this letter finds you well. I am writing to share some important information about our current unit of study: **%s**.

Over the coming weeks, students will be exploring this topic through hands-on activities, discussions, and independent practice. You can support learning at home by asking your student what they worked on in class.

Please feel free to reach out with any questions.

Warm regards,
Your Teacher
`, topic)
}

func fixtureIEPSupport(topic string) string {
	return fmt.Sprintf(`# Accommodation Support: %s

## Overview
This document summarizes instructional accommodations and supports aligned to the student's individualized education program.

## Instructional Accommodations
- Extended time on assignments and assessments
- Preferential seating near the point of instruction
- Directions repeated and provided in writing
- Graphic organizers for multi-step tasks

## Assessment Accommodations
- Tests administered in a small-group setting
- Questions read aloud on request

## Progress Monitoring
Review accommodation effectiveness at each grading period and adjust as needed.
`, topic)
}

func fixtureTranslation(topic string) string {
	return fmt.Sprintf(`# Translation: %s

## Translated Content
El contenido ha sido traducido manteniendo el formato original, la estructura pedagogica y el vocabulario apropiado para el nivel de grado.

## Notes
- Formatting preserved from the source material
- Grade-appropriate vocabulary maintained
`, topic)
}

func fixtureSeatingChart(topic string) string {
	return fmt.Sprintf(`# Seating Chart: %s

## Layout

| Row | Seat 1 | Seat 2 | Seat 3 | Seat 4 |
|-----|--------|--------|--------|--------|
| 1   | A      | B      | C      | D      |
| 2   | E      | F      | G      | H      |
| 3   | I      | J      | K      | L      |

## Rationale
Students needing frequent check-ins are seated near the front. Talkative pairs are separated across rows.
`, topic)
}

func fixtureRubric(topic string) string {
	return fmt.Sprintf(`# Rubric: %s

| Criteria | Excellent (4) | Proficient (3) | Developing (2) | Beginning (1) |
|----------|---------------|----------------|----------------|---------------|
| Content  | Thorough and accurate | Mostly accurate | Partially accurate | Minimal |
| Organization | Clear and logical | Mostly organized | Somewhat organized | Unorganized |
| Conventions | Error-free | Few errors | Several errors | Many errors |

## Scoring
Total the points across criteria. 10-12 exceeds expectations, 7-9 meets, below 7 needs revision.
`, topic)
}

func fixtureGeneric(topic string) string {
	return fmt.Sprintf(`# Teaching Material: %s

## Overview
This material addresses the requested topic with structured content suitable for classroom use.

## Content
- Key point one with supporting detail
- Key point two with supporting detail
- Key point three with supporting detail

## Suggested Use
Introduce the material during direct instruction, then revisit it during guided practice.
`, topic)
}
