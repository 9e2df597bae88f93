package models

type ContentType string

const (
	ContentLesson      ContentType = "lesson"
	ContentQuiz        ContentType = "quiz"
	ContentExplanation ContentType = "explanation"
	ContentPractice    ContentType = "practice"
)

var ContentTypes = []ContentType{ContentLesson, ContentQuiz, ContentExplanation, ContentPractice}

func (t ContentType) IsValid() bool {
	for _, ct := range ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

const DefaultDifficulty = "medium"

// Languages offered at onboarding, keyed by code.
var Languages = map[string]string{
	"en": "English",
	"lg": "Luganda",
	"rn": "Runyankole",
}

func IsValidLanguage(code string) bool {
	_, ok := Languages[code]
	return ok
}

// GeneratedContent is the response of a content generation request. It is
// never persisted.
type GeneratedContent struct {
	Content    string      `json:"content"`
	Type       ContentType `json:"type"`
	Subject    string      `json:"subject"`
	GradeLevel string      `json:"grade_level"`
	Topic      string      `json:"topic"`
	Difficulty string      `json:"difficulty"`
	Language   string      `json:"language"`
}
