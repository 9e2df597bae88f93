package services

import (
	"context"
	"io"

	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/prompts"
	"github.com/ugandalearn/learn-service/internal/validator"
)

// ProfileService manages the caller's onboarding profile. Every method takes
// the authenticated user id explicitly.
type ProfileService interface {
	// GetProfile returns the caller's profile joined with the account row.
	// The slice is empty when the caller has not onboarded yet.
	GetProfile(ctx context.Context, userID string) ([]*models.ProfileWithAccount, error)
	CreateProfile(ctx context.Context, userID string, req *validator.ProfileCreateRequest) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.UserProfile, error)
}

// SubjectService manages the curriculum subject catalog
type SubjectService interface {
	ListSubjects(ctx context.Context, gradeLevel string) ([]*models.SubjectSummary, error)

	// RequireTeacher checks the caller's stored role. CreateSubject runs it
	// too; handlers call it first so a non-teacher is refused before the body
	// is read.
	RequireTeacher(ctx context.Context, userID string) error
	CreateSubject(ctx context.Context, userID string, req *validator.SubjectCreateRequest) (*models.Subject, error)

	// ExportSubjects writes the listing for gradeLevel as an XLSX workbook
	ExportSubjects(ctx context.Context, gradeLevel string, w io.Writer) error
}

// ContentService turns content requests into generated learning material
type ContentService interface {
	GenerateContent(ctx context.Context, userID string, req *validator.ContentGenerateRequest) (*models.GeneratedContent, error)

	// RenderPrompt validates req and returns the prompt pair without calling
	// the provider
	RenderPrompt(req *validator.ContentGenerateRequest) (prompts.Prompt, error)
}

// ServiceManager owns service construction and lifecycle
type ServiceManager interface {
	Profile() ProfileService
	Subject() SubjectService
	Content() ContentService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
