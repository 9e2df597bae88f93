package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/repositories"
)

type AccountPostgreSQL struct {
	db *gorm.DB
}

func NewAccountPostgreSQL(db *gorm.DB) repositories.AccountRepository {
	return &AccountPostgreSQL{db: db}
}

// Upsert inserts the account, or refreshes its email, name and last_seen_at
// when the id already exists. created_at is left untouched on conflict.
func (r *AccountPostgreSQL) Upsert(ctx context.Context, account *models.Account) error {
	if account.LastSeenAt.IsZero() {
		account.LastSeenAt = time.Now().UTC()
	}

	return handleDBError(accountUpsertQuery(r.db.WithContext(ctx), account).Error, "upsert account")
}

func accountUpsertQuery(tx *gorm.DB, account *models.Account) *gorm.DB {
	return tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "last_seen_at"}),
		}).
		Create(account)
}
