package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeResourceRepo struct {
	mu            sync.Mutex
	store         map[string]*domain.Resource
	conflicts     int
	simulateError error
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{store: make(map[string]*domain.Resource)}
}

func (m *fakeResourceRepo) Create(ctx context.Context, r *domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *r
	m.store[r.ID] = &clone
	return nil
}

func (m *fakeResourceRepo) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *fakeResourceRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	list := []*domain.Resource{}
	for _, r := range m.store {
		if r.UserID == userID {
			clone := *r
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *fakeResourceRepo) Update(ctx context.Context, r *domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return domain.ErrResourceConflict
	}
	stored, ok := m.store[r.ID]
	if !ok {
		return domain.ErrResourceNotFound
	}
	if stored.Version != r.Version-1 {
		return domain.ErrResourceConflict
	}
	clone := *r
	m.store[r.ID] = &clone
	return nil
}

func (m *fakeResourceRepo) Delete(ctx context.Context, id string, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok || r.UserID != userID {
		return domain.ErrResourceNotFound
	}
	delete(m.store, id)
	return nil
}

type fakeSessionRepo struct {
	mu            sync.Mutex
	store         map[string]*domain.StudySession
	simulateError error
}

func newFakeSessionRepo(sessions ...*domain.StudySession) *fakeSessionRepo {
	m := &fakeSessionRepo{store: make(map[string]*domain.StudySession)}
	for _, s := range sessions {
		m.store[s.ID] = s
	}
	return m
}

func (m *fakeSessionRepo) Create(ctx context.Context, s *domain.StudySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *s
	m.store[s.ID] = &clone
	return nil
}

func (m *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *fakeSessionRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.StudySession, error) {
	return m.ListByUserIDAndDateRange(ctx, userID, time.Time{}, time.Time{})
}

func (m *fakeSessionRepo) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	list := []*domain.StudySession{}
	for _, s := range m.store {
		if s.UserID != userID {
			continue
		}
		if !from.IsZero() && (s.SessionDate.Before(from) || s.SessionDate.After(to)) {
			continue
		}
		clone := *s
		list = append(list, &clone)
	}
	return list, nil
}

func (m *fakeSessionRepo) Delete(ctx context.Context, id string, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok || s.UserID != userID {
		return domain.ErrSessionNotFound
	}
	delete(m.store, id)
	return nil
}

type fakeGoalRepo struct {
	mu    sync.Mutex
	store map[string]*domain.Goal
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{store: make(map[string]*domain.Goal)}
}

func (m *fakeGoalRepo) Create(ctx context.Context, g *domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *g
	m.store[g.ID] = &clone
	return nil
}

func (m *fakeGoalRepo) UpdateProgress(ctx context.Context, g *domain.Goal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.store[g.ID]
	if !ok || stored.Status != domain.GoalActive {
		return false, nil
	}
	clone := *g
	m.store[g.ID] = &clone
	return true, nil
}

func (m *fakeGoalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.store[id]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	clone := *g
	return &clone, nil
}

func (m *fakeGoalRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []*domain.Goal{}
	for _, g := range m.store {
		if g.UserID == userID {
			clone := *g
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *fakeGoalRepo) Update(ctx context.Context, g *domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[g.ID]; !ok {
		return domain.ErrGoalNotFound
	}
	clone := *g
	m.store[g.ID] = &clone
	return nil
}

type fakeAchievementRepo struct {
	mu   sync.Mutex
	list []*domain.Achievement
}

func (m *fakeAchievementRepo) Award(ctx context.Context, a *domain.Achievement) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.list {
		if existing.UserID == a.UserID && existing.Key == a.Key {
			return false, nil
		}
	}
	m.list = append(m.list, a)
	return true, nil
}

func (m *fakeAchievementRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Achievement{}
	for _, a := range m.list {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (n *recordingNotifier) Enqueue(userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.users)
}

type memoryStreakCache struct {
	mu          sync.Mutex
	entries     map[string]domain.StreakResult
	hits        int
	invalidated []string
}

func newMemoryStreakCache() *memoryStreakCache {
	return &memoryStreakCache{entries: make(map[string]domain.StreakResult)}
}

func (c *memoryStreakCache) key(userID string, today time.Time) string {
	return userID + "|" + domain.DateKey(today)
}

func (c *memoryStreakCache) Get(ctx context.Context, userID string, today time.Time) (domain.StreakResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[c.key(userID, today)]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *memoryStreakCache) Set(ctx context.Context, userID string, today time.Time, r domain.StreakResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(userID, today)] = r
}

func (c *memoryStreakCache) Invalidate(ctx context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	for k := range c.entries {
		if len(k) > len(userID) && k[:len(userID)+1] == userID+"|" {
			delete(c.entries, k)
		}
	}
}

type countingMetrics struct {
	logged, deleted, completed int
	minutes                    int
}

func (m *countingMetrics) SessionLogged(ctx context.Context, minutes int, linked bool) {
	m.logged++
	m.minutes += minutes
}

func (m *countingMetrics) SessionDeleted(ctx context.Context, minutes int) {
	m.deleted++
	m.minutes -= minutes
}

func (m *countingMetrics) ResourceCompleted(ctx context.Context) { m.completed++ }

func session(id, userID string, date string, minutes int) *domain.StudySession {
	d, err := domain.ParseCalendarDate(date)
	if err != nil {
		panic(err)
	}
	return &domain.StudySession{ID: id, UserID: userID, SessionDate: d, MinutesStudied: minutes}
}
