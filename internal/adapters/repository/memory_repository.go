package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
)

var (
	_ domain.UserRepository        = (*InMemoryUserRepository)(nil)
	_ domain.ResourceRepository    = (*InMemoryResourceRepository)(nil)
	_ domain.SessionRepository     = (*InMemorySessionRepository)(nil)
	_ domain.GoalRepository        = (*InMemoryGoalRepository)(nil)
	_ domain.AchievementRepository = (*InMemoryAchievementRepository)(nil)
)

// The in-memory repositories store copies so callers never share pointers with the store.

type InMemoryUserRepository struct {
	mu    sync.RWMutex
	store map[string]*domain.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{store: make(map[string]*domain.User)}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type InMemoryResourceRepository struct {
	mu    sync.RWMutex
	store map[string]*domain.Resource
}

func NewInMemoryResourceRepository() *InMemoryResourceRepository {
	return &InMemoryResourceRepository{store: make(map[string]*domain.Resource)}
}

func cloneResource(r *domain.Resource) *domain.Resource {
	clone := *r
	clone.Tags = append([]string(nil), r.Tags...)
	return &clone
}

func (r *InMemoryResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[res.ID]; exists {
		return domain.ErrResourceConflict
	}
	r.store[res.ID] = cloneResource(res)
	return nil
}

func (r *InMemoryResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.store[id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	return cloneResource(res), nil
}

func (r *InMemoryResourceRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resources := []*domain.Resource{}
	for _, res := range r.store {
		if res.UserID == userID {
			resources = append(resources, cloneResource(res))
		}
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].CreatedAt.After(resources[j].CreatedAt)
	})
	return resources, nil
}

func (r *InMemoryResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[res.ID]
	if !ok || stored.UserID != res.UserID {
		return domain.ErrResourceNotFound
	}
	if stored.Version != res.Version-1 {
		return domain.ErrResourceConflict
	}
	r.store[res.ID] = cloneResource(res)
	return nil
}

func (r *InMemoryResourceRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.store[id]
	if !ok || res.UserID != userID {
		return domain.ErrResourceNotFound
	}
	delete(r.store, id)
	return nil
}

type InMemorySessionRepository struct {
	mu    sync.RWMutex
	store map[string]*domain.StudySession
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{store: make(map[string]*domain.StudySession)}
}

func (r *InMemorySessionRepository) Create(ctx context.Context, s *domain.StudySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *s
	r.store[s.ID] = &clone
	return nil
}

func (r *InMemorySessionRepository) GetByID(ctx context.Context, id string) (*domain.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *InMemorySessionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.StudySession, error) {
	return r.filter(userID, func(*domain.StudySession) bool { return true }), nil
}

func (r *InMemorySessionRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error) {
	from, to = domain.CalendarDay(from), domain.CalendarDay(to)
	return r.filter(userID, func(s *domain.StudySession) bool {
		return !s.SessionDate.Before(from) && !s.SessionDate.After(to)
	}), nil
}

func (r *InMemorySessionRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.store[id]
	if !ok || s.UserID != userID {
		return domain.ErrSessionNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *InMemorySessionRepository) filter(userID string, keep func(*domain.StudySession) bool) []*domain.StudySession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := []*domain.StudySession{}
	for _, s := range r.store {
		if s.UserID == userID && keep(s) {
			clone := *s
			sessions = append(sessions, &clone)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].SessionDate.Equal(sessions[j].SessionDate) {
			return sessions[i].SessionDate.After(sessions[j].SessionDate)
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions
}

type InMemoryGoalRepository struct {
	mu    sync.RWMutex
	store map[string]*domain.Goal
}

func NewInMemoryGoalRepository() *InMemoryGoalRepository {
	return &InMemoryGoalRepository{store: make(map[string]*domain.Goal)}
}

func (r *InMemoryGoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *g
	r.store[g.ID] = &clone
	return nil
}

func (r *InMemoryGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.store[id]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	clone := *g
	return &clone, nil
}

func (r *InMemoryGoalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := []*domain.Goal{}
	for _, g := range r.store {
		if g.UserID == userID {
			clone := *g
			goals = append(goals, &clone)
		}
	}

	sort.Slice(goals, func(i, j int) bool {
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals, nil
}

func (r *InMemoryGoalRepository) Update(ctx context.Context, g *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[g.ID]
	if !ok || stored.UserID != g.UserID {
		return domain.ErrGoalNotFound
	}
	clone := *g
	r.store[g.ID] = &clone
	return nil
}

func (r *InMemoryGoalRepository) UpdateProgress(ctx context.Context, g *domain.Goal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[g.ID]
	if !ok || stored.UserID != g.UserID || stored.Status != domain.GoalActive {
		return false, nil
	}
	stored.CurrentValue = g.CurrentValue
	stored.Status = g.Status
	stored.UpdatedAt = g.UpdatedAt
	return true, nil
}

type InMemoryAchievementRepository struct {
	mu   sync.RWMutex
	list []*domain.Achievement
}

func NewInMemoryAchievementRepository() *InMemoryAchievementRepository {
	return &InMemoryAchievementRepository{}
}

func (r *InMemoryAchievementRepository) Award(ctx context.Context, a *domain.Achievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.list {
		if existing.UserID == a.UserID && existing.Key == a.Key {
			return false, nil
		}
	}
	clone := *a
	r.list = append(r.list, &clone)
	return true, nil
}

func (r *InMemoryAchievementRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	achievements := []*domain.Achievement{}
	for _, a := range r.list {
		if a.UserID == userID {
			clone := *a
			achievements = append(achievements, &clone)
		}
	}

	sort.SliceStable(achievements, func(i, j int) bool {
		return achievements[i].EarnedAt.After(achievements[j].EarnedAt)
	})
	return achievements, nil
}
