// Package prompts turns a content request into the system and user prompts
// sent to the completion provider. Every template is a pure function of its
// Params.
package prompts

import (
	"fmt"
	"strings"

	"github.com/ugandalearn/learn-service/internal/models"
)

// Params are the values interpolated into a template.
type Params struct {
	Subject    string
	GradeLevel string
	Topic      string
	Difficulty string
	Language   string
}

// Prompt is the (system, user) pair for one generation request.
type Prompt struct {
	System string
	User   string
}

// TemplateFunc renders a Prompt for one content type.
type TemplateFunc func(Params) Prompt

var templates = map[models.ContentType]TemplateFunc{
	models.ContentLesson:      lesson,
	models.ContentQuiz:        quiz,
	models.ContentExplanation: explanation,
	models.ContentPractice:    practice,
}

// Lookup returns the template for t, or false if t is not a known type.
func Lookup(t models.ContentType) (TemplateFunc, bool) {
	fn, ok := templates[t]
	return fn, ok
}

// Render applies defaults to p and renders the template for t.
func Render(t models.ContentType, p Params) (Prompt, error) {
	fn, ok := Lookup(t)
	if !ok {
		return Prompt{}, fmt.Errorf("unknown content type %q", t)
	}
	return fn(p.WithDefaults()), nil
}

// WithDefaults fills an empty difficulty with "medium" and an empty language
// with "en".
func (p Params) WithDefaults() Params {
	if p.Difficulty == "" {
		p.Difficulty = models.DefaultDifficulty
	}
	if p.Language == "" {
		p.Language = models.DefaultLanguage
	}
	return p
}

// LanguageInstruction is "English" for en and a bilingual instruction for
// every other code.
func LanguageInstruction(language string) string {
	if language == "en" {
		return "English"
	}
	return "Local language with English translations"
}

func footer(p Params) string {
	return fmt.Sprintf("Difficulty level: %s\nLanguage: %s", p.Difficulty, LanguageInstruction(p.Language))
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}

func lesson(p Params) Prompt {
	return Prompt{
		System: "You are an expert educator creating curriculum-aligned content for Uganda's National Curriculum. " +
			"Create engaging, age-appropriate lessons that follow pedagogical best practices.",
		User: lines(
			fmt.Sprintf("Create a comprehensive lesson on \"%s\" for %s at %s level.", p.Topic, p.Subject, p.GradeLevel),
			"",
			"The lesson should include:",
			"1. Learning objectives (3-4 clear, measurable goals)",
			"2. Introduction (engaging hook to capture student interest)",
			"3. Main content (detailed explanation with examples)",
			"4. Activities (2-3 interactive exercises)",
			"5. Summary (key takeaways)",
			"6. Assessment questions (3-5 questions to check understanding)",
			"",
			footer(p),
			"",
			"Make it culturally relevant to Uganda and include real-world examples students can relate to.",
		),
	}
}

func quiz(p Params) Prompt {
	return Prompt{
		System: "You are an expert educator creating assessment questions aligned with Uganda's National Curriculum. " +
			"Create fair, clear, and educationally sound questions.",
		User: lines(
			fmt.Sprintf("Create a quiz with 10 questions on \"%s\" for %s at %s level.", p.Topic, p.Subject, p.GradeLevel),
			"",
			"Include:",
			"- 6 multiple choice questions (4 options each)",
			"- 2 true/false questions",
			"- 2 short answer questions",
			"",
			"For each question provide:",
			"- The question text",
			"- Answer options (for multiple choice)",
			"- Correct answer",
			"- Brief explanation of why the answer is correct",
			"",
			footer(p),
			"",
			"Ensure questions test understanding, not just memorization.",
		),
	}
}

func explanation(p Params) Prompt {
	return Prompt{
		System: "You are a patient tutor helping students understand difficult concepts. Explain things clearly and simply.",
		User: lines(
			fmt.Sprintf("Explain \"%s\" in %s for a %s student who is struggling to understand.", p.Topic, p.Subject, p.GradeLevel),
			"",
			"Use:",
			"- Simple, clear language",
			"- Step-by-step breakdown",
			"- Analogies and examples from everyday life in Uganda",
			"- Visual descriptions where helpful",
			"",
			footer(p),
		),
	}
}

func practice(p Params) Prompt {
	return Prompt{
		System: "You are creating practice exercises to help students master concepts through repetition and application.",
		User: lines(
			fmt.Sprintf("Create 8 practice problems for \"%s\" in %s at %s level.", p.Topic, p.Subject, p.GradeLevel),
			"",
			"Include:",
			"- 4 basic problems (applying the concept directly)",
			"- 3 intermediate problems (requiring some reasoning)",
			"- 1 challenging problem (requiring creative application)",
			"",
			"For each problem provide:",
			"- Clear problem statement",
			"- Step-by-step solution",
			"- Tips for solving similar problems",
			"",
			footer(p),
		),
	}
}
