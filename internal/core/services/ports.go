package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
)

// ProgressNotifier is satisfied by workers.ProgressWorker.
type ProgressNotifier interface {
	Enqueue(userID string)
}

// StreakCache stores computed streaks per user and calendar day.
// Implementations must treat failures as cache misses.
type StreakCache interface {
	Get(ctx context.Context, userID string, today time.Time) (domain.StreakResult, bool)
	Set(ctx context.Context, userID string, today time.Time, result domain.StreakResult)
	Invalidate(ctx context.Context, userID string)
}

type StudyMetrics interface {
	SessionLogged(ctx context.Context, minutes int, linked bool)
	SessionDeleted(ctx context.Context, minutes int)
	ResourceCompleted(ctx context.Context)
}

type noopNotifier struct{}

func (noopNotifier) Enqueue(string) {}

type noopStreakCache struct{}

func (noopStreakCache) Get(context.Context, string, time.Time) (domain.StreakResult, bool) {
	return domain.StreakResult{}, false
}
func (noopStreakCache) Set(context.Context, string, time.Time, domain.StreakResult) {}
func (noopStreakCache) Invalidate(context.Context, string)                          {}

type noopMetrics struct{}

func (noopMetrics) SessionLogged(context.Context, int, bool) {}
func (noopMetrics) SessionDeleted(context.Context, int)      {}
func (noopMetrics) ResourceCompleted(context.Context)        {}

func orNotifier(n ProgressNotifier) ProgressNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func orMetrics(m StudyMetrics) StudyMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

func orStreakCache(c StreakCache) StreakCache {
	if c == nil {
		return noopStreakCache{}
	}
	return c
}
