package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
)

type ResourceLister interface {
	ListByUserID(ctx context.Context, userID string) ([]*domain.Resource, error)
}

type SessionLister interface {
	ListByUserID(ctx context.Context, userID string) ([]*domain.StudySession, error)
}

type GoalStore interface {
	ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error)
	UpdateProgress(ctx context.Context, goal *domain.Goal) (bool, error)
}

type AchievementAwarder interface {
	Award(ctx context.Context, achievement *domain.Achievement) (bool, error)
}

type ProgressJob struct {
	UserID string
}

// ProgressWorker recomputes goal progress and milestone achievements
// after anything that can move them.
type ProgressWorker struct {
	resources    ResourceLister
	sessions     SessionLister
	goals        GoalStore
	achievements AchievementAwarder
	threshold    int
	now          func() time.Time
	jobs         chan ProgressJob
}

func NewProgressWorker(resources ResourceLister, sessions SessionLister, goals GoalStore, achievements AchievementAwarder, threshold int) *ProgressWorker {
	if threshold < 1 {
		threshold = domain.DefaultStreakThreshold
	}
	return &ProgressWorker{
		resources:    resources,
		sessions:     sessions,
		goals:        goals,
		achievements: achievements,
		threshold:    threshold,
		now:          time.Now,
		jobs:         make(chan ProgressJob, 100),
	}
}

func (w *ProgressWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Progress Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				if err := w.processJob(ctx, job); err != nil {
					log.Printf("[WORKER] Error processing progress for user %s: %v", job.UserID, err)
				}
			case <-ctx.Done():
				log.Println("Progress Worker shutting down...")
				return
			}
		}
	}()
}

func (w *ProgressWorker) Enqueue(userID string) {
	select {
	case w.jobs <- ProgressJob{UserID: userID}:
	default:
		log.Printf("Progress Worker queue full! Dropping job for user %s", userID)
	}
}

func (w *ProgressWorker) processJob(ctx context.Context, job ProgressJob) error {
	resources, err := w.resources.ListByUserID(ctx, job.UserID)
	if err != nil {
		return err
	}

	sessions, err := w.sessions.ListByUserID(ctx, job.UserID)
	if err != nil {
		return err
	}

	now := w.now()
	streaks, err := domain.AnalyzeStreaks(sessions, now, w.threshold)
	if err != nil {
		return err
	}

	progress := domain.UserProgress{
		LongestStreak:  streaks.LongestStreak,
		SessionsLogged: len(sessions),
	}
	for _, s := range sessions {
		progress.TotalMinutes += s.MinutesStudied
	}
	for _, r := range resources {
		if r.Status == domain.StatusCompleted {
			progress.CompletedResources++
		}
	}

	if err := w.updateGoals(ctx, job.UserID, now, sessions, resources, streaks); err != nil {
		return err
	}

	for _, m := range domain.ReachedMilestones(progress) {
		awarded, err := w.achievements.Award(ctx, domain.NewAchievement(job.UserID, m, now))
		if err != nil {
			log.Printf("[WORKER] Failed to award %s to %s: %v", m.Key, job.UserID, err)
			continue
		}
		if awarded {
			log.Printf("Achievement unlocked for %s: %s", job.UserID, m.Title)
		}
	}

	return nil
}

func (w *ProgressWorker) updateGoals(
	ctx context.Context,
	userID string,
	now time.Time,
	sessions []*domain.StudySession,
	resources []*domain.Resource,
	streaks domain.StreakResult,
) error {
	goals, err := w.goals.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for _, g := range goals {
		if g.Status != domain.GoalActive {
			continue
		}

		if !g.RecordProgress(goalValue(g, sessions, resources, streaks), now) {
			continue
		}
		written, err := w.goals.UpdateProgress(ctx, g)
		if err != nil {
			log.Printf("[WORKER] Failed to update goal %s: %v", g.ID, err)
			continue
		}
		if !written {
			log.Printf("[WORKER] Goal %s left active state meanwhile, progress discarded", g.ID)
			continue
		}
		if g.Status == domain.GoalCompleted {
			log.Printf("Goal completed for %s: %s", userID, g.Title)
		}
	}
	return nil
}

// goalValue measures a goal against activity inside its own window.
// Streak goals track the live current streak.
func goalValue(g *domain.Goal, sessions []*domain.StudySession, resources []*domain.Resource, streaks domain.StreakResult) int {
	switch g.Type {
	case domain.GoalTypeTime:
		total := 0
		for _, s := range sessions {
			if g.Covers(s.SessionDate) {
				total += s.MinutesStudied
			}
		}
		return total
	case domain.GoalTypeResources:
		count := 0
		for _, r := range resources {
			if r.CompletedAt != nil && g.Covers(*r.CompletedAt) {
				count++
			}
		}
		return count
	case domain.GoalTypeStreak:
		return streaks.CurrentStreak
	}
	return 0
}
