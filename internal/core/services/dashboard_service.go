package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

const summaryWindowDays = 30

type DashboardService struct {
	resources    domain.ResourceRepository
	sessions     domain.SessionRepository
	goals        domain.GoalRepository
	achievements domain.AchievementRepository
	threshold    int
	now          func() time.Time
}

func NewDashboardService(
	resources domain.ResourceRepository,
	sessions domain.SessionRepository,
	goals domain.GoalRepository,
	achievements domain.AchievementRepository,
	threshold int,
) *DashboardService {
	if threshold < 1 {
		threshold = domain.DefaultStreakThreshold
	}
	return &DashboardService{
		resources:    resources,
		sessions:     sessions,
		goals:        goals,
		achievements: achievements,
		threshold:    threshold,
		now:          time.Now,
	}
}

// Get loads the four collections concurrently and folds them into one view.
func (s *DashboardService) Get(ctx context.Context, userID string, today time.Time) (*domain.Dashboard, error) {
	if today.IsZero() {
		today = s.now()
	}

	var (
		resources    []*domain.Resource
		sessions     []*domain.StudySession
		goals        []*domain.Goal
		achievements []*domain.Achievement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resources, err = s.resources.ListByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.sessions.ListByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.goals.ListByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		achievements, err = s.achievements.ListByUserID(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard service: %w", err)
	}

	streaks, err := domain.AnalyzeStreaks(sessions, today, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("dashboard service: analyze streaks: %w", err)
	}

	learning := domain.ComputeLearningStats(resources)
	dash := &domain.Dashboard{
		Stats:         learning,
		TimeSpent:     domain.FormatMinutes(learning.TotalTimeSpent),
		Streaks:       streaks,
		Achievements:  len(achievements),
		ThresholdMins: s.threshold,
	}

	for _, goal := range goals {
		if goal.Status == domain.GoalActive {
			dash.ActiveGoals++
		}
	}
	for _, r := range resources {
		if r.IsOverdue(today) {
			dash.OverdueCount++
		}
	}

	dash.Summary, err = Summarize(sessions, today, summaryWindowDays)
	if err != nil {
		return nil, fmt.Errorf("dashboard service: summarize: %w", err)
	}

	return dash, nil
}

// Summarize describes the days window ending today. Mean, median and p90 are
// taken over active days only, so an idle week does not drag them to zero.
func Summarize(sessions []*domain.StudySession, today time.Time, days int) (domain.StudySummary, error) {
	summary := domain.StudySummary{Days: days}
	if days < 1 {
		return summary, nil
	}

	totals, err := domain.ComputeDailyTotals(sessions)
	if err != nil {
		return summary, err
	}

	end := domain.CalendarDay(today)
	start := end.AddDate(0, 0, -(days - 1))

	var active stats.Float64Data
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		minutes := totals[domain.DateKey(d)]
		if minutes == 0 {
			continue
		}
		summary.TotalMinutes += minutes
		active = append(active, float64(minutes))
	}

	summary.ActiveDays = len(active)
	if len(active) == 0 {
		return summary, nil
	}

	if summary.MeanMinutes, err = stats.Mean(active); err != nil {
		return summary, err
	}
	if summary.MedianMinutes, err = stats.Median(active); err != nil {
		return summary, err
	}
	if summary.P90Minutes, err = stats.PercentileNearestRank(active, 90); err != nil {
		return summary, err
	}

	return summary, nil
}
