package services

import (
	"context"
	"testing"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalService(t *testing.T) {
	ctx := context.Background()

	newService := func() (*GoalService, *recordingNotifier) {
		notifier := &recordingNotifier{}
		svc := NewGoalService(newFakeGoalRepo(), &fakeAchievementRepo{}, notifier)
		svc.now = fixedClock
		return svc, notifier
	}

	t.Run("Create defaults the window to the period starting today", func(t *testing.T) {
		svc, notifier := newService()

		g, err := svc.Create(ctx, CreateGoalInput{UserID: "u1", Title: "Five hours", Type: "time", TargetValue: 300, Period: "weekly"})

		require.NoError(t, err)
		assert.Equal(t, "2024-03-15", domain.DateKey(g.StartDate))
		assert.Equal(t, "2024-03-21", domain.DateKey(g.EndDate))
		assert.Equal(t, 1, notifier.count())
	})

	t.Run("Fail: Enum parsing happens before construction", func(t *testing.T) {
		svc, notifier := newService()

		_, err := svc.Create(ctx, CreateGoalInput{UserID: "u1", Title: "x", Type: "pages", TargetValue: 1, Period: "weekly"})
		assert.ErrorIs(t, err, domain.ErrInvalidGoalType)

		_, err = svc.Create(ctx, CreateGoalInput{UserID: "u1", Title: "x", Type: "time", TargetValue: 1, Period: "daily"})
		assert.ErrorIs(t, err, domain.ErrInvalidGoalPeriod)

		assert.Zero(t, notifier.count())
	})

	t.Run("ChangeStatus enforces ownership and final states", func(t *testing.T) {
		svc, _ := newService()
		g, err := svc.Create(ctx, CreateGoalInput{UserID: "u1", Title: "Streak", Type: "streak", TargetValue: 7, Period: "monthly"})
		require.NoError(t, err)

		_, err = svc.ChangeStatus(ctx, g.ID, "intruder", "paused")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		paused, err := svc.ChangeStatus(ctx, g.ID, "u1", "paused")
		require.NoError(t, err)
		assert.Equal(t, domain.GoalPaused, paused.Status)

		_, err = svc.ChangeStatus(ctx, g.ID, "u1", "cancelled")
		require.NoError(t, err)

		_, err = svc.ChangeStatus(ctx, g.ID, "u1", "active")
		assert.ErrorIs(t, err, domain.ErrGoalStatusTransition)

		_, err = svc.ChangeStatus(ctx, "missing", "u1", "active")
		assert.ErrorIs(t, err, domain.ErrGoalNotFound)

		list, err := svc.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, domain.GoalCancelled, list[0].Status)
	})

	t.Run("Achievements are listed per user", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.achievements.Award(ctx, domain.NewAchievement("u1", domain.Milestones[0], fixedNow))
		require.NoError(t, err)

		list, err := svc.Achievements(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		other, err := svc.Achievements(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}
