package services

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	svc       *SessionService
	sessions  *fakeSessionRepo
	resources *fakeResourceRepo
	cache     *memoryStreakCache
	notifier  *recordingNotifier
	metrics   *countingMetrics
	resource  *domain.Resource
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		sessions:  newFakeSessionRepo(),
		resources: newFakeResourceRepo(),
		cache:     newMemoryStreakCache(),
		notifier:  &recordingNotifier{},
		metrics:   &countingMetrics{},
	}
	f.svc = NewSessionService(f.sessions, f.resources, f.cache, f.notifier, f.metrics)
	f.svc.now = fixedClock

	r, err := domain.NewResource("u1", domain.ResourceDetails{Title: "The Go Memory Model", Type: domain.ResourceTypeArticle})
	require.NoError(t, err)
	require.NoError(t, f.resources.Create(context.Background(), r))
	f.resource = r

	return f
}

func TestSessionService_LogSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Defaults to today and adds time to the resource", func(t *testing.T) {
		f := newSessionFixture(t)

		s, err := f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", ResourceID: f.resource.ID, Minutes: 25})

		require.NoError(t, err)
		assert.Equal(t, "2024-03-15", domain.DateKey(s.SessionDate))
		require.NotNil(t, s.ResourceID)
		assert.Equal(t, f.resource.ID, *s.ResourceID)

		stored, _ := f.resources.GetByID(ctx, f.resource.ID)
		assert.Equal(t, 25, stored.TimeSpent)
		assert.Equal(t, 2, stored.Version)

		assert.Equal(t, []string{"u1"}, f.cache.invalidated)
		assert.Equal(t, 1, f.notifier.count())
		assert.Equal(t, 1, f.metrics.logged)
	})

	t.Run("Success: Session without resource", func(t *testing.T) {
		f := newSessionFixture(t)
		date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

		s, err := f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", Date: date, Minutes: 15})

		require.NoError(t, err)
		assert.Nil(t, s.ResourceID)
		assert.Equal(t, date, s.SessionDate)
	})

	t.Run("Retries on version conflicts", func(t *testing.T) {
		f := newSessionFixture(t)
		f.resources.conflicts = maxTimeRetries - 1

		_, err := f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", ResourceID: f.resource.ID, Minutes: 10})

		require.NoError(t, err)
		stored, _ := f.resources.GetByID(ctx, f.resource.ID)
		assert.Equal(t, 10, stored.TimeSpent)
	})

	t.Run("Fail: Gives up after repeated conflicts and rolls the session back", func(t *testing.T) {
		f := newSessionFixture(t)
		stats := NewStatsService(f.sessions, f.cache, domain.DefaultStreakThreshold)

		_, err := stats.GetStreaks(ctx, "u1", fixedNow)
		require.NoError(t, err)
		require.Len(t, f.cache.entries, 1)

		f.resources.conflicts = maxTimeRetries
		_, err = f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", ResourceID: f.resource.ID, Minutes: 30})

		assert.ErrorIs(t, err, domain.ErrResourceConflict)
		assert.Empty(t, f.sessions.store, "a failed log must not leave a session behind")
		assert.Empty(t, f.cache.entries)
		assert.Equal(t, []string{"u1"}, f.cache.invalidated)
		assert.Equal(t, 1, f.notifier.count())
		assert.Zero(t, f.metrics.logged)

		f.resources.conflicts = 0
		_, err = f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", ResourceID: f.resource.ID, Minutes: 30})
		require.NoError(t, err)

		streaks, err := stats.GetStreaks(ctx, "u1", fixedNow)
		require.NoError(t, err)
		assert.Equal(t, domain.StreakResult{CurrentStreak: 1, LongestStreak: 1}, streaks)

		stored, _ := f.resources.GetByID(ctx, f.resource.ID)
		assert.Equal(t, 30, stored.TimeSpent, "the retry is counted once")
	})

	tests := []struct {
		name    string
		input   LogSessionInput
		wantErr error
	}{
		{"Zero minutes", LogSessionInput{UserID: "u1", Minutes: 0}, domain.ErrInvalidMinutes},
		{"More than a day", LogSessionInput{UserID: "u1", Minutes: domain.MaxSessionMinutes + 1}, domain.ErrInvalidMinutes},
		{"Future date", LogSessionInput{UserID: "u1", Minutes: 10, Date: fixedNow.AddDate(0, 0, 2)}, domain.ErrSessionInFuture},
		{"Unknown resource", LogSessionInput{UserID: "u1", Minutes: 10, ResourceID: "missing"}, domain.ErrResourceNotFound},
	}
	for _, tt := range tests {
		t.Run("Fail: "+tt.name, func(t *testing.T) {
			f := newSessionFixture(t)

			_, err := f.svc.LogSession(ctx, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.sessions.store)
			assert.Zero(t, f.notifier.count())
		})
	}

	t.Run("Tomorrow is accepted for clients ahead of UTC", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", Minutes: 10, Date: fixedNow.AddDate(0, 0, 1)})

		assert.NoError(t, err)
	})

	t.Run("Fail: Another user's resource", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.svc.LogSession(ctx, LogSessionInput{UserID: "intruder", ResourceID: f.resource.ID, Minutes: 10})

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestSessionService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)

	s, err := f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", ResourceID: f.resource.ID, Minutes: 40})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, s.ID, "intruder"), domain.ErrUnauthorized)

	require.NoError(t, f.svc.Delete(ctx, s.ID, "u1"))

	stored, _ := f.resources.GetByID(ctx, f.resource.ID)
	assert.Equal(t, 0, stored.TimeSpent)
	assert.Empty(t, f.sessions.store)
	assert.Equal(t, 1, f.metrics.deleted)
	assert.Len(t, f.cache.invalidated, 2)

	assert.ErrorIs(t, f.svc.Delete(ctx, s.ID, "u1"), domain.ErrSessionNotFound)
}

func TestSessionService_DeleteRestoresSessionWhenTimeUpdateFails(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	stats := NewStatsService(f.sessions, f.cache, domain.DefaultStreakThreshold)

	s, err := f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", ResourceID: f.resource.ID, Minutes: 40})
	require.NoError(t, err)

	before, err := stats.GetStreaks(ctx, "u1", fixedNow)
	require.NoError(t, err)
	require.Equal(t, domain.StreakResult{CurrentStreak: 1, LongestStreak: 1}, before)

	f.resources.conflicts = maxTimeRetries
	err = f.svc.Delete(ctx, s.ID, "u1")

	assert.ErrorIs(t, err, domain.ErrResourceConflict)
	assert.Contains(t, f.sessions.store, s.ID)
	assert.Empty(t, f.cache.entries)
	assert.Len(t, f.cache.invalidated, 2)
	assert.Zero(t, f.metrics.deleted)

	stored, _ := f.resources.GetByID(ctx, f.resource.ID)
	assert.Equal(t, 40, stored.TimeSpent)

	f.resources.conflicts = 0
	require.NoError(t, f.svc.Delete(ctx, s.ID, "u1"))

	after, err := stats.GetStreaks(ctx, "u1", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, domain.StreakResult{}, after)
}

func TestSessionService_DeleteAfterResourceRemoved(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)

	s, err := f.svc.LogSession(ctx, LogSessionInput{UserID: "u1", ResourceID: f.resource.ID, Minutes: 40})
	require.NoError(t, err)
	require.NoError(t, f.resources.Delete(ctx, f.resource.ID, "u1"))

	assert.NoError(t, f.svc.Delete(ctx, s.ID, "u1"))
}

func TestSessionService_List(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	f.sessions = newFakeSessionRepo(
		session("a", "u1", "2024-03-01", 10),
		session("b", "u1", "2024-03-10", 10),
		session("c", "u2", "2024-03-10", 10),
	)
	f.svc.repo = f.sessions

	all, err := f.svc.List(ctx, "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	from, _ := domain.ParseCalendarDate("2024-03-05")
	to, _ := domain.ParseCalendarDate("2024-03-15")
	ranged, err := f.svc.List(ctx, "u1", from, to)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "b", ranged[0].ID)

	_, err = f.svc.List(ctx, "u1", to, from)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = f.svc.List(ctx, "u1", from, time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}
