package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ugandalearn/learn-service/internal/events"
	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/repositories"
	"github.com/ugandalearn/learn-service/internal/validator"
)

type profileService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewProfileService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, validator *validator.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) ([]*models.ProfileWithAccount, error) {
	profiles, err := s.repo.Profile().ListWithAccount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profiles, nil
}

func (s *profileService) CreateProfile(ctx context.Context, userID string, req *validator.ProfileCreateRequest) (*models.UserProfile, error) {
	s.logger.InfoContext(ctx, "Creating profile", "user_id", userID, "role", req.Role)

	normalizeProfileRequest(req)

	if req.Role == "" || req.FullName == "" {
		return nil, NewServiceError(ErrValidationFailed, MsgProfileRequired)
	}
	if !req.Role.IsValid() {
		return nil, NewServiceError(ErrInvalidRole, MsgInvalidRole)
	}
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, NewValidationError(MsgValidationFailed, verrs.Fields())
	}

	profile := &models.UserProfile{
		UserID:             userID,
		Role:               req.Role,
		FullName:           req.FullName,
		GradeLevel:         req.GradeLevel,
		SchoolName:         req.SchoolName,
		LanguagePreference: models.DefaultLanguage,
	}
	if req.LanguagePreference != nil {
		profile.LanguagePreference = *req.LanguagePreference
	}

	// The pre-check gives the common case a clean answer; the unique index on
	// user_id settles concurrent creates.
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		exists, err := tx.Profile().ExistsByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check existing profile: %w", err)
		}
		if exists {
			return NewServiceError(ErrProfileExists, MsgProfileExists)
		}

		if err := tx.Profile().Create(ctx, profile); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return NewServiceError(ErrProfileExists, MsgProfileExists)
			}
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Profile created", "user_id", userID, "profile_id", profile.ID)
	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.TopicProfileCreated, userID, map[string]interface{}{
		"profile_id": profile.ID,
		"role":       profile.Role,
	}))

	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.UserProfile, error) {
	if patch == nil || patch.IsEmpty() {
		return nil, NewServiceError(ErrValidationFailed, MsgNoFieldsToUpdate)
	}

	normalizeProfilePatch(patch)
	if verrs := s.validator.GetBusinessValidator().ValidateProfilePatch(patch); len(verrs) > 0 {
		return nil, NewValidationError(MsgValidationFailed, verrs.Fields())
	}

	assignments := patch.Assignments()
	profile, err := s.repo.Profile().Update(ctx, userID, assignments)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewServiceError(ErrProfileNotFound, MsgProfileNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	fields := make([]string, 0, len(assignments))
	for column := range assignments {
		fields = append(fields, column)
	}
	sort.Strings(fields)

	s.logger.InfoContext(ctx, "Profile updated", "user_id", userID, "fields", fields)
	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.TopicProfileUpdated, userID, map[string]interface{}{
		"profile_id": profile.ID,
		"fields":     fields,
	}))

	return profile, nil
}

// normalizeProfileRequest trims input and turns empty optional strings into
// NULL so they are stored as absent
func normalizeProfileRequest(req *validator.ProfileCreateRequest) {
	req.Role = models.UserRole(strings.TrimSpace(string(req.Role)))
	req.FullName = strings.TrimSpace(req.FullName)
	req.GradeLevel = trimToNil(req.GradeLevel)
	req.SchoolName = trimToNil(req.SchoolName)
	req.LanguagePreference = trimToNil(req.LanguagePreference)
}

// normalizeProfilePatch treats an empty string for a nullable column as an
// explicit null
func normalizeProfilePatch(patch *models.ProfilePatch) {
	for _, field := range []*models.OptionalString{&patch.GradeLevel, &patch.SchoolName} {
		if !field.Set || field.Null {
			continue
		}
		field.Value = strings.TrimSpace(field.Value)
		if field.Value == "" {
			*field = models.Null()
		}
	}
	if patch.FullName.Set && !patch.FullName.Null {
		patch.FullName.Value = strings.TrimSpace(patch.FullName.Value)
	}
}

func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
