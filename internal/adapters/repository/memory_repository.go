package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

// In-memory repositories back the unit tests and local development.

type InMemoryUserRepository struct {
	users    map[string]*domain.User
	profiles map[string]*domain.UserProfile

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:    make(map[string]*domain.User),
		profiles: make(map[string]*domain.UserProfile),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}

	r.users[user.ID] = user
	r.profiles[user.ID] = profile
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	ids := make([]string, 0, len(all))
	for _, u := range all {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (r *InMemoryUserRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	copied := *profile
	return &copied, nil
}

func (r *InMemoryUserRepository) UpdateProfile(ctx context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[profile.UserID]; !ok {
		return domain.ErrUserNotFound
	}

	copied := *profile
	r.profiles[profile.UserID] = &copied
	return nil
}

type InMemoryDailyLogRepository struct {
	// keyed by userID, then date
	store map[string]map[string]*domain.DailyLog

	mu sync.RWMutex
}

func NewInMemoryDailyLogRepository() *InMemoryDailyLogRepository {
	return &InMemoryDailyLogRepository{
		store: make(map[string]map[string]*domain.DailyLog),
	}
}

func (r *InMemoryDailyLogRepository) Upsert(ctx context.Context, log *domain.DailyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store[log.UserID] == nil {
		r.store[log.UserID] = make(map[string]*domain.DailyLog)
	}

	if existing, ok := r.store[log.UserID][log.Date]; ok {
		log.ID = existing.ID
		log.CreatedAt = existing.CreatedAt
	} else if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.UpdatedAt = time.Now().UTC()

	copied := *log
	r.store[log.UserID][log.Date] = &copied
	return nil
}

func (r *InMemoryDailyLogRepository) GetByDate(ctx context.Context, userID, date string) (*domain.DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log, ok := r.store[userID][date]
	if !ok {
		return nil, domain.ErrLogNotFound
	}

	copied := *log
	copied.FillDefaults()
	return &copied, nil
}

func (r *InMemoryDailyLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := r.sortedByDate(userID)

	// newest first
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date > logs[j].Date
	})

	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (r *InMemoryDailyLogRepository) ListRange(ctx context.Context, userID, start, end string) ([]*domain.DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*domain.DailyLog
	for _, l := range r.sortedByDate(userID) {
		if l.Date >= start && l.Date <= end {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

func (r *InMemoryDailyLogRepository) CountSince(ctx context.Context, userID, since string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for date := range r.store[userID] {
		if date >= since {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryDailyLogRepository) Delete(ctx context.Context, userID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[userID][date]; !ok {
		return domain.ErrLogNotFound
	}

	delete(r.store[userID], date)
	return nil
}

// sortedByDate returns detached copies, ascending by date key.
func (r *InMemoryDailyLogRepository) sortedByDate(userID string) []*domain.DailyLog {
	logs := make([]*domain.DailyLog, 0, len(r.store[userID]))
	for _, l := range r.store[userID] {
		copied := *l
		copied.FillDefaults()
		logs = append(logs, &copied)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date < logs[j].Date
	})
	return logs
}

type InMemoryAnalysisRepository struct {
	results []*domain.AnalysisResult

	mu sync.RWMutex
}

func NewInMemoryAnalysisRepository() *InMemoryAnalysisRepository {
	return &InMemoryAnalysisRepository{}
}

func (r *InMemoryAnalysisRepository) Create(ctx context.Context, result *domain.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.ID == "" {
		result.ID = uuid.NewString()
	}

	copied := *result
	r.results = append(r.results, &copied)
	return nil
}

func (r *InMemoryAnalysisRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AnalysisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.AnalysisResult
	for _, res := range r.results {
		if res.UserID == userID {
			copied := *res
			results = append(results, &copied)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *InMemoryAnalysisRepository) Latest(ctx context.Context, userID string, analysisType domain.AnalysisType) (*domain.AnalysisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.AnalysisResult
	for _, res := range r.results {
		if res.UserID != userID || res.AnalysisType != analysisType {
			continue
		}
		if latest == nil || res.CreatedAt.After(latest.CreatedAt) {
			latest = res
		}
	}

	if latest == nil {
		return nil, domain.ErrAnalysisNotFound
	}

	copied := *latest
	return &copied, nil
}
