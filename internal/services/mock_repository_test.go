package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memRepository is an in-memory repositories.Repository. Each table has its
// own lock, so an existence check and a create are not atomic, the same way
// two separate statements are not.
type memRepository struct {
	accounts *memAccounts
	profiles *memProfiles
	subjects *memSubjects
}

func newMemRepository() *memRepository {
	return &memRepository{
		accounts: &memAccounts{rows: map[string]*models.Account{}},
		profiles: &memProfiles{rows: map[string]*models.UserProfile{}},
		subjects: &memSubjects{},
	}
}

func (r *memRepository) Account() repositories.AccountRepository { return r.accounts }
func (r *memRepository) Profile() repositories.ProfileRepository { return r.profiles }
func (r *memRepository) Subject() repositories.SubjectRepository { return r.subjects }
func (r *memRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}
func (r *memRepository) Ping(ctx context.Context) error { return nil }
func (r *memRepository) Close() error                   { return nil }

type memAccounts struct {
	mu   sync.Mutex
	rows map[string]*models.Account
}

func (m *memAccounts) Upsert(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.rows[account.ID] = &cp
	return nil
}

type memProfiles struct {
	mu     sync.Mutex
	rows   map[string]*models.UserProfile
	nextID uint

	// hideExisting makes ExistsByUserID always report false, as a concurrent
	// request would see before the other insert commits
	hideExisting bool

	updateCalls []map[string]interface{}
	createCalls int
}

func (m *memProfiles) ListWithAccount(ctx context.Context, userID string) ([]*models.ProfileWithAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.ProfileWithAccount{}
	if p, ok := m.rows[userID]; ok {
		out = append(out, &models.ProfileWithAccount{UserProfile: *p, Email: userID + "@example.com"})
	}
	return out, nil
}

func (m *memProfiles) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[userID]
	if !ok {
		return nil, fmt.Errorf("get profile by user id: %w", repositories.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideExisting {
		return false, nil
	}
	_, ok := m.rows[userID]
	return ok, nil
}

func (m *memProfiles) Create(ctx context.Context, profile *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if _, ok := m.rows[profile.UserID]; ok {
		return fmt.Errorf("create profile: %w", repositories.ErrDuplicateKey)
	}
	m.nextID++
	now := time.Now().UTC()
	profile.ID = m.nextID
	profile.CreatedAt = now
	profile.UpdatedAt = now
	cp := *profile
	m.rows[profile.UserID] = &cp
	return nil
}

func (m *memProfiles) Update(ctx context.Context, userID string, assignments map[string]interface{}) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls = append(m.updateCalls, assignments)

	p, ok := m.rows[userID]
	if !ok {
		return nil, fmt.Errorf("update profile: %w", repositories.ErrNotFound)
	}
	for column, value := range assignments {
		switch column {
		case "full_name":
			p.FullName = value.(string)
		case "language_preference":
			p.LanguagePreference = value.(string)
		case "grade_level":
			p.GradeLevel = optionalValue(value)
		case "school_name":
			p.SchoolName = optionalValue(value)
		}
	}
	p.UpdatedAt = p.UpdatedAt.Add(time.Second)
	cp := *p
	return &cp, nil
}

func optionalValue(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

type memSubjects struct {
	mu          sync.Mutex
	rows        []*models.Subject
	topicCounts map[uint]int64
	createCalls int
	listErr     error
}

func (m *memSubjects) ListWithTopicCount(ctx context.Context, filters repositories.SubjectFilters) ([]*models.SubjectSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	out := []*models.SubjectSummary{}
	for _, s := range m.rows {
		if filters.GradeLevel != "" && !containsString(s.GradeLevels, filters.GradeLevel) {
			continue
		}
		out = append(out, &models.SubjectSummary{Subject: *s, TopicCount: m.topicCounts[s.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memSubjects) Create(ctx context.Context, subject *models.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	for _, s := range m.rows {
		if s.Code == subject.Code {
			return fmt.Errorf("create subject: %w", repositories.ErrDuplicateKey)
		}
	}
	subject.ID = uint(len(m.rows) + 1)
	cp := *subject
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memSubjects) ExistsByCode(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }
