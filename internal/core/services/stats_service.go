package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
)

type StatsService struct {
	sessions  domain.SessionRepository
	cache     StreakCache
	threshold int
	now       func() time.Time
}

func NewStatsService(sessions domain.SessionRepository, cache StreakCache, threshold int) *StatsService {
	if threshold < 1 {
		threshold = domain.DefaultStreakThreshold
	}
	return &StatsService{
		sessions:  sessions,
		cache:     orStreakCache(cache),
		threshold: threshold,
		now:       time.Now,
	}
}

func (s *StatsService) Threshold() int {
	return s.threshold
}

// GetStreaks uses the caller's today; a zero value means the server clock.
func (s *StatsService) GetStreaks(ctx context.Context, userID string, today time.Time) (domain.StreakResult, error) {
	if today.IsZero() {
		today = s.now()
	}

	if cached, ok := s.cache.Get(ctx, userID, today); ok {
		return cached, nil
	}

	sessions, err := s.sessions.ListByUserID(ctx, userID)
	if err != nil {
		return domain.StreakResult{}, err
	}

	result, err := domain.AnalyzeStreaks(sessions, today, s.threshold)
	if err != nil {
		return domain.StreakResult{}, fmt.Errorf("stats service: analyze streaks for %s: %w", userID, err)
	}

	s.cache.Set(ctx, userID, today, result)
	return result, nil
}

func (s *StatsService) GetCalendar(ctx context.Context, userID string, from, to time.Time) ([]domain.CalendarEntry, error) {
	// Validate before hitting the repository.
	if _, err := domain.BuildCalendar(nil, from, to, s.threshold); err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListByUserIDAndDateRange(ctx, userID, domain.CalendarDay(from), domain.CalendarDay(to))
	if err != nil {
		return nil, err
	}

	return domain.BuildCalendar(sessions, from, to, s.threshold)
}

func (s *StatsService) GetDay(ctx context.Context, userID string, date, today time.Time) (domain.DayDetail, error) {
	if today.IsZero() {
		today = s.now()
	}

	day := domain.CalendarDay(date)
	sessions, err := s.sessions.ListByUserIDAndDateRange(ctx, userID, day, day)
	if err != nil {
		return domain.DayDetail{}, err
	}

	return domain.BuildDayDetail(sessions, date, today, s.threshold), nil
}
