package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/ugandalearn/learn-service/internal/events"
	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/repositories"
	"github.com/ugandalearn/learn-service/internal/validator"
)

type subjectService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubjectService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, validator *validator.Validator) SubjectService {
	return &subjectService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *subjectService) ListSubjects(ctx context.Context, gradeLevel string) ([]*models.SubjectSummary, error) {
	subjects, err := s.repo.Subject().ListWithTopicCount(ctx, repositories.SubjectFilters{
		GradeLevel: strings.TrimSpace(gradeLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *subjectService) CreateSubject(ctx context.Context, userID string, req *validator.SubjectCreateRequest) (*models.Subject, error) {
	s.logger.InfoContext(ctx, "Creating subject", "user_id", userID, "code", req.Code)

	// Role comes from the stored profile, never from the request
	if err := s.RequireTeacher(ctx, userID); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	req.Description = trimToNil(req.Description)
	if req.Name == "" || req.Code == "" || len(req.GradeLevels) == 0 {
		return nil, NewServiceError(ErrValidationFailed, MsgSubjectRequired)
	}

	verrs := s.validator.Validate(req)
	verrs = append(verrs, s.validator.GetBusinessValidator().ValidateGradeLevels(req.GradeLevels)...)
	if len(verrs) > 0 {
		return nil, NewValidationError(MsgValidationFailed, verrs.Fields())
	}

	exists, err := s.repo.Subject().ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check subject code: %w", err)
	}
	if exists {
		return nil, NewServiceError(ErrSubjectCodeExists, MsgSubjectCodeExists)
	}

	subject := &models.Subject{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		GradeLevels: pq.StringArray(req.GradeLevels),
	}
	if err := s.repo.Subject().Create(ctx, subject); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, NewServiceError(ErrSubjectCodeExists, MsgSubjectCodeExists)
		}
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	s.logger.InfoContext(ctx, "Subject created", "subject_id", subject.ID, "code", subject.Code)
	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.TopicSubjectCreated, userID, map[string]interface{}{
		"subject_id":   subject.ID,
		"code":         subject.Code,
		"grade_levels": []string(subject.GradeLevels),
	}))

	return subject, nil
}

// RequireTeacher returns Forbidden unless the caller has a teacher profile
func (s *subjectService) RequireTeacher(ctx context.Context, userID string) error {
	profile, err := s.repo.Profile().GetByUserID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewServiceError(ErrForbidden, MsgTeachersOnly)
		}
		return fmt.Errorf("failed to load caller profile: %w", err)
	}
	if profile.Role != models.RoleTeacher {
		s.logger.WarnContext(ctx, "Non-teacher attempted to create subject", "user_id", userID, "role", profile.Role)
		return NewServiceError(ErrForbidden, MsgTeachersOnly)
	}
	return nil
}
