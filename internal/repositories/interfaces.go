package repositories

import (
	"context"

	"github.com/ugandalearn/learn-service/internal/models"
)

// AccountRepository stores identity-provider accounts
type AccountRepository interface {
	// Upsert inserts the account or refreshes email, name and last_seen_at
	Upsert(ctx context.Context, account *models.Account) error
}

// ProfileRepository stores onboarding profiles, one per user
type ProfileRepository interface {
	// ListWithAccount returns the caller's profile joined with the account's
	// email and name. The slice is empty when no profile exists.
	ListWithAccount(ctx context.Context, userID string) ([]*models.ProfileWithAccount, error)
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)

	// Create returns ErrDuplicateKey if a profile already exists for the user
	Create(ctx context.Context, profile *models.UserProfile) error

	// Update writes the given column assignments plus updated_at and returns
	// the updated row, or ErrNotFound if no profile matched
	Update(ctx context.Context, userID string, assignments map[string]interface{}) (*models.UserProfile, error)
}

// SubjectFilters narrows subject listings
type SubjectFilters struct {
	GradeLevel string `json:"grade_level"`
}

// SubjectRepository stores curriculum subjects
type SubjectRepository interface {
	// ListWithTopicCount returns subjects ordered by name with their topic
	// counts, optionally restricted to one grade
	ListWithTopicCount(ctx context.Context, filters SubjectFilters) ([]*models.SubjectSummary, error)

	// Create returns ErrDuplicateKey if the code is taken
	Create(ctx context.Context, subject *models.Subject) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
