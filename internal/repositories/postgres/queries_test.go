package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ugandalearn/learn-service/internal/cache"
	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/repositories"
)

// newDryRunDB builds statements against the postgres dialect without
// opening a connection
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=127.0.0.1 port=1 user=learn dbname=learn sslmode=disable",
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormLogger.Discard,
	})
	require.NoError(t, err)
	return db
}

type renderedSQL struct {
	raw       string
	vars      []interface{}
	explained string
}

func render(t *testing.T, db *gorm.DB, build func(tx *gorm.DB) *gorm.DB) renderedSQL {
	t.Helper()
	stmt := build(db.Session(&gorm.Session{DryRun: true, SkipDefaultTransaction: true})).Statement
	raw := stmt.SQL.String()
	require.NotEmpty(t, raw)
	return renderedSQL{
		raw:       raw,
		vars:      stmt.Vars,
		explained: db.Dialector.Explain(raw, stmt.Vars...),
	}
}

func assertInOrder(t *testing.T, sql string, fragments ...string) {
	t.Helper()
	pos := 0
	for _, fragment := range fragments {
		idx := strings.Index(sql[pos:], fragment)
		if !assert.GreaterOrEqual(t, idx, 0, "missing %q after offset %d in %s", fragment, pos, sql) {
			return
		}
		pos += idx + len(fragment)
	}
}

func TestSubjectListQuery(t *testing.T) {
	db := newDryRunDB(t)

	t.Run("unfiltered", func(t *testing.T) {
		var dest []*models.SubjectSummary
		sql := render(t, db, func(tx *gorm.DB) *gorm.DB {
			return subjectListQuery(tx, repositories.SubjectFilters{}).Scan(&dest)
		})

		assertInOrder(t, sql.raw,
			"SELECT s.*, COUNT(t.id) AS topic_count",
			"FROM subjects s",
			"LEFT JOIN topics t ON s.id = t.subject_id",
			"GROUP BY",
			"ORDER BY s.name ASC")
		assert.NotContains(t, sql.raw, "WHERE")
		assert.Empty(t, sql.vars)
	})

	t.Run("grade filter uses set membership", func(t *testing.T) {
		var dest []*models.SubjectSummary
		sql := render(t, db, func(tx *gorm.DB) *gorm.DB {
			return subjectListQuery(tx, repositories.SubjectFilters{GradeLevel: "P4"}).Scan(&dest)
		})

		assertInOrder(t, sql.raw,
			"LEFT JOIN topics t",
			"WHERE",
			"= ANY(s.grade_levels)",
			"GROUP BY",
			"ORDER BY s.name ASC")
		assert.Equal(t, []interface{}{"P4"}, sql.vars)
	})
}

func TestProfileWithAccountQuery(t *testing.T) {
	db := newDryRunDB(t)

	var dest []*models.ProfileWithAccount
	sql := render(t, db, func(tx *gorm.DB) *gorm.DB {
		return profileWithAccountQuery(tx, "u1").Scan(&dest)
	})

	assertInOrder(t, sql.raw,
		"SELECT up.*, au.email, au.name AS auth_name",
		"FROM user_profiles up",
		"JOIN auth_users au ON up.user_id = au.id",
		"WHERE up.user_id =")
	assert.NotContains(t, sql.raw, "LEFT JOIN")
	assert.Equal(t, []interface{}{"u1"}, sql.vars)
}

func TestProfileUpdateQuery(t *testing.T) {
	db := newDryRunDB(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name        string
		assignments map[string]interface{}
		want        []string
		absent      []string
	}{
		{
			name:        "only grade level",
			assignments: models.ProfilePatch{GradeLevel: models.Some("P5")}.Assignments(),
			want:        []string{`"grade_level"='P5'`, `"updated_at"='2025-01-02 03:04:05'`},
			absent:      []string{`"full_name"`, `"school_name"`, `"language_preference"`, `"role"`},
		},
		{
			name:        "null clears the column",
			assignments: models.ProfilePatch{GradeLevel: models.Null(), SchoolName: models.Null()}.Assignments(),
			want:        []string{`"grade_level"=NULL`, `"school_name"=NULL`, `"updated_at"=`},
			absent:      []string{`"full_name"`, `"language_preference"`},
		},
		{
			name:        "several fields",
			assignments: models.ProfilePatch{FullName: models.Some("Amina N"), LanguagePreference: models.Some("lg")}.Assignments(),
			want:        []string{`"full_name"='Amina N'`, `"language_preference"='lg'`, `"updated_at"=`},
			absent:      []string{`"grade_level"`, `"school_name"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var profile models.UserProfile
			sql := render(t, db, func(tx *gorm.DB) *gorm.DB {
				return profileUpdateQuery(tx, "u1", profileUpdateValues(tt.assignments, now), &profile)
			})

			assertInOrder(t, sql.explained, `UPDATE "user_profiles" SET`, "WHERE user_id = 'u1'", "RETURNING *")
			for _, fragment := range tt.want {
				assert.Contains(t, sql.explained, fragment)
			}
			for _, fragment := range tt.absent {
				assert.NotContains(t, sql.explained, fragment)
			}
		})
	}
}

func TestProfileUpdateValues(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assignments := map[string]interface{}{"grade_level": nil}

	values := profileUpdateValues(assignments, now)

	assert.Equal(t, map[string]interface{}{"grade_level": nil, "updated_at": now}, values)
	assert.NotContains(t, assignments, "updated_at")
}

func TestAccountUpsertQuery(t *testing.T) {
	db := newDryRunDB(t)
	name := "Okello James"

	sql := render(t, db, func(tx *gorm.DB) *gorm.DB {
		return accountUpsertQuery(tx, &models.Account{
			ID:         "u1",
			Email:      "okello@example.ug",
			Name:       &name,
			LastSeenAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		})
	})

	assertInOrder(t, sql.raw,
		`INSERT INTO "auth_users"`,
		`ON CONFLICT ("id") DO UPDATE SET`,
		`"email"="excluded"."email"`,
		`"name"="excluded"."name"`,
		`"last_seen_at"="excluded"."last_seen_at"`)
	assert.NotContains(t, sql.raw, `"created_at"="excluded"."created_at"`)
	assert.Contains(t, sql.vars, "u1")
	assert.Contains(t, sql.vars, "okello@example.ug")
}

func TestListWithTopicCount_UnknownGradeSkipsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cm := cache.NewCacheManager(client)
	ctx := context.Background()

	cached := []*models.SubjectSummary{{Subject: models.Subject{Name: "Mathematics", Code: "MTH"}, TopicCount: 2}}
	require.NoError(t, cm.Subject.Set(ctx, cache.SubjectListKey("P4"), cached, time.Minute))
	require.NoError(t, cm.Subject.Set(ctx, cache.SubjectListKey("junk"), cached, time.Minute))

	// Statements never execute in dry-run mode, so a database read surfaces
	// as an error while a cache hit does not
	repo := NewSubjectPostgreSQL(newDryRunDB(t).Session(&gorm.Session{DryRun: true}), cm)

	got, err := repo.ListWithTopicCount(ctx, repositories.SubjectFilters{GradeLevel: "P4"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MTH", got[0].Code)

	_, err = repo.ListWithTopicCount(ctx, repositories.SubjectFilters{GradeLevel: "junk"})
	assert.Error(t, err)

	_, err = repo.ListWithTopicCount(ctx, repositories.SubjectFilters{GradeLevel: "another-junk"})
	assert.Error(t, err)
	assert.False(t, mr.Exists("subject:"+cache.SubjectListKey("another-junk")))
}
