package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/repositories"
)

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (r *ProfilePostgreSQL) ListWithAccount(ctx context.Context, userID string) ([]*models.ProfileWithAccount, error) {
	profiles := make([]*models.ProfileWithAccount, 0, 1)

	if err := profileWithAccountQuery(r.db.WithContext(ctx), userID).Scan(&profiles).Error; err != nil {
		return nil, handleDBError(err, "list profile with account")
	}
	return profiles, nil
}

func (r *ProfilePostgreSQL) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, handleDBError(err, "get profile by user id")
	}
	return &profile, nil
}

func (r *ProfilePostgreSQL) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check profile exists")
	}
	return count > 0, nil
}

// Create inserts the profile. The unique index on user_id turns a concurrent
// second insert into ErrDuplicateKey.
func (r *ProfilePostgreSQL) Create(ctx context.Context, profile *models.UserProfile) error {
	return handleDBError(r.db.WithContext(ctx).Create(profile).Error, "create profile")
}

func (r *ProfilePostgreSQL) Update(ctx context.Context, userID string, assignments map[string]interface{}) (*models.UserProfile, error) {
	var profile models.UserProfile
	result := profileUpdateQuery(r.db.WithContext(ctx), userID, profileUpdateValues(assignments, time.Now().UTC()), &profile)
	if result.Error != nil {
		return nil, handleDBError(result.Error, "update profile")
	}
	if result.RowsAffected == 0 {
		return nil, handleDBError(gorm.ErrRecordNotFound, "update profile")
	}
	return &profile, nil
}

func profileWithAccountQuery(tx *gorm.DB, userID string) *gorm.DB {
	return tx.
		Table("user_profiles up").
		Select("up.*, au.email, au.name AS auth_name").
		Joins("JOIN auth_users au ON up.user_id = au.id").
		Where("up.user_id = ?", userID)
}

// profileUpdateValues copies the patch assignments and stamps updated_at.
// Nil values are kept so the column is set to NULL.
func profileUpdateValues(assignments map[string]interface{}, now time.Time) map[string]interface{} {
	values := make(map[string]interface{}, len(assignments)+1)
	for column, value := range assignments {
		values[column] = value
	}
	values["updated_at"] = now
	return values
}

// profileUpdateQuery writes only the given columns and scans the updated row
// back into dest
func profileUpdateQuery(tx *gorm.DB, userID string, values map[string]interface{}, dest *models.UserProfile) *gorm.DB {
	return tx.
		Model(dest).
		Clauses(clause.Returning{}).
		Where("user_id = ?", userID).
		Updates(values)
}
