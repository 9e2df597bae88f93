package validator

import (
	"github.com/ugandalearn/learn-service/internal/models"
)

// ProfileCreateRequest is the onboarding payload for a new profile
type ProfileCreateRequest struct {
	Role               models.UserRole `json:"role" validate:"required,user_role"`
	FullName           string          `json:"full_name" validate:"required,max=255"`
	GradeLevel         *string         `json:"grade_level" validate:"omitempty,grade_level"`
	SchoolName         *string         `json:"school_name" validate:"omitempty,max=255"`
	LanguagePreference *string         `json:"language_preference" validate:"omitempty,language_code"`
}

// SubjectCreateRequest is the payload teachers send to add a subject
type SubjectCreateRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Code        string   `json:"code" validate:"required,max=50,subject_code"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	GradeLevels []string `json:"grade_levels" validate:"required,min=1"`
}

// ContentGenerateRequest describes a piece of learning content to generate.
// Grade level is free text here because it is only interpolated into prompts.
type ContentGenerateRequest struct {
	Type       models.ContentType `json:"type" validate:"required,content_type"`
	Subject    string             `json:"subject" validate:"required,max=255"`
	GradeLevel string             `json:"grade_level" validate:"required,max=50"`
	Topic      string             `json:"topic" validate:"required,max=500"`
	Difficulty string             `json:"difficulty" validate:"omitempty,max=50"`
	Language   string             `json:"language" validate:"omitempty,max=10"`
}
