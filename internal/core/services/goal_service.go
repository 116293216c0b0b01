package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
)

type GoalService struct {
	goals        domain.GoalRepository
	achievements domain.AchievementRepository
	notifier     ProgressNotifier
	now          func() time.Time
}

func NewGoalService(goals domain.GoalRepository, achievements domain.AchievementRepository, notifier ProgressNotifier) *GoalService {
	return &GoalService{
		goals:        goals,
		achievements: achievements,
		notifier:     orNotifier(notifier),
		now:          time.Now,
	}
}

type CreateGoalInput struct {
	UserID      string
	Title       string
	Description string
	Type        string
	TargetValue int
	Period      string
	// StartDate defaults to today, EndDate to the end of the period.
	StartDate time.Time
	EndDate   time.Time
}

func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	gType, err := domain.ParseGoalType(input.Type)
	if err != nil {
		return nil, err
	}
	period, err := domain.ParseGoalPeriod(input.Period)
	if err != nil {
		return nil, err
	}

	start := input.StartDate
	if start.IsZero() {
		start = s.now()
	}

	goal, err := domain.NewGoal(input.UserID, input.Title, input.Description, gType, input.TargetValue, period, start, input.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("goal service: failed to create goal: %w", err)
	}

	// Sessions already logged in the period count toward the new goal.
	s.notifier.Enqueue(goal.UserID)

	return goal, nil
}

func (s *GoalService) List(ctx context.Context, userID string) ([]*domain.Goal, error) {
	return s.goals.ListByUserID(ctx, userID)
}

func (s *GoalService) ChangeStatus(ctx context.Context, id string, userID string, status string) (*domain.Goal, error) {
	parsed, err := domain.ParseGoalStatus(status)
	if err != nil {
		return nil, err
	}

	goal, err := s.goals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	if err := goal.ChangeStatus(parsed); err != nil {
		return nil, err
	}

	if err := s.goals.Update(ctx, goal); err != nil {
		return nil, err
	}

	if parsed == domain.GoalActive {
		s.notifier.Enqueue(userID)
	}
	return goal, nil
}

func (s *GoalService) Achievements(ctx context.Context, userID string) ([]*domain.Achievement, error) {
	return s.achievements.ListByUserID(ctx, userID)
}
