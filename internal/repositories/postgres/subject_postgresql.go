package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/ugandalearn/learn-service/internal/cache"
	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/repositories"
)

type SubjectPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewSubjectPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SubjectRepository {
	return &SubjectPostgreSQL{db: db, cache: cacheManager}
}

// ListWithTopicCount serves listings cache-aside, keyed by grade filter.
// Unknown grades bypass the cache so arbitrary query values cannot fill it.
func (r *SubjectPostgreSQL) ListWithTopicCount(ctx context.Context, filters repositories.SubjectFilters) ([]*models.SubjectSummary, error) {
	if filters.GradeLevel != "" && !models.IsValidGradeLevel(filters.GradeLevel) {
		return r.listFromDB(ctx, filters)
	}

	var subjects []*models.SubjectSummary

	err := r.cache.Subject.CacheOrExecute(ctx, cache.SubjectListKey(filters.GradeLevel), &subjects,
		cache.SubjectCacheConfig.TTL, func() (interface{}, error) {
			return r.listFromDB(ctx, filters)
		})
	if err != nil {
		return nil, err
	}
	if subjects == nil {
		subjects = []*models.SubjectSummary{}
	}
	return subjects, nil
}

func (r *SubjectPostgreSQL) listFromDB(ctx context.Context, filters repositories.SubjectFilters) ([]*models.SubjectSummary, error) {
	subjects := make([]*models.SubjectSummary, 0)
	if err := subjectListQuery(r.db.WithContext(ctx), filters).Scan(&subjects).Error; err != nil {
		return nil, handleDBError(err, "list subjects")
	}
	return subjects, nil
}

// subjectListQuery selects subjects ordered by name with their topic counts.
// Subjects without topics are kept by the LEFT JOIN and count zero.
func subjectListQuery(tx *gorm.DB, filters repositories.SubjectFilters) *gorm.DB {
	query := tx.
		Table("subjects s").
		Select("s.*, COUNT(t.id) AS topic_count").
		Joins("LEFT JOIN topics t ON s.id = t.subject_id")
	if filters.GradeLevel != "" {
		query = query.Where("? = ANY(s.grade_levels)", filters.GradeLevel)
	}
	return query.Group("s.id").Order("s.name ASC")
}

func (r *SubjectPostgreSQL) Create(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return handleDBError(err, "create subject")
	}
	cache.InvalidateSubjectCache(ctx, r.cache)
	return nil
}

func (r *SubjectPostgreSQL) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Subject{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check subject code exists")
	}
	return count > 0, nil
}
