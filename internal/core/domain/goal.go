package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGoalNotFound         = errors.New("goal not found")
	ErrGoalTitleEmpty       = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong     = errors.New("goal title is too long (max 100 chars)")
	ErrGoalInvalidUserID    = errors.New("invalid user id")
	ErrInvalidGoalType      = errors.New("invalid goal type (must be time, resources or streak)")
	ErrInvalidGoalPeriod    = errors.New("invalid goal period (must be weekly, monthly or yearly)")
	ErrInvalidGoalStatus    = errors.New("invalid goal status (must be active, completed, paused or cancelled)")
	ErrInvalidGoalTarget    = errors.New("goal target must be greater than zero")
	ErrInvalidGoalDates     = errors.New("goal end date must be after its start date")
	ErrGoalStatusTransition = errors.New("goal status cannot be changed from a final state")
)

const MaxGoalTitleLen = 100

type GoalType string

const (
	GoalTypeTime      GoalType = "time"
	GoalTypeResources GoalType = "resources"
	GoalTypeStreak    GoalType = "streak"
)

func ParseGoalType(s string) (GoalType, error) {
	t := GoalType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case GoalTypeTime, GoalTypeResources, GoalTypeStreak:
		return t, nil
	}
	return "", ErrInvalidGoalType
}

// Unit is the label shown next to a goal's values.
func (t GoalType) Unit() string {
	switch t {
	case GoalTypeTime:
		return "minutes"
	case GoalTypeResources:
		return "resources"
	case GoalTypeStreak:
		return "days"
	}
	return ""
}

type GoalPeriod string

const (
	PeriodWeekly  GoalPeriod = "weekly"
	PeriodMonthly GoalPeriod = "monthly"
	PeriodYearly  GoalPeriod = "yearly"
)

func ParseGoalPeriod(s string) (GoalPeriod, error) {
	p := GoalPeriod(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	}
	return "", ErrInvalidGoalPeriod
}

// EndFrom returns the last day of a period that starts on start.
func (p GoalPeriod) EndFrom(start time.Time) time.Time {
	start = CalendarDay(start)
	switch p {
	case PeriodMonthly:
		return start.AddDate(0, 1, -1)
	case PeriodYearly:
		return start.AddDate(1, 0, -1)
	default:
		return start.AddDate(0, 0, 6)
	}
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
	GoalCancelled GoalStatus = "cancelled"
)

func ParseGoalStatus(s string) (GoalStatus, error) {
	st := GoalStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case GoalActive, GoalCompleted, GoalPaused, GoalCancelled:
		return st, nil
	}
	return "", ErrInvalidGoalStatus
}

func (s GoalStatus) IsFinal() bool {
	return s == GoalCompleted || s == GoalCancelled
}

type Goal struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description,omitempty" db:"description"`
	Type         GoalType   `json:"type" db:"type"`
	TargetValue  int        `json:"target_value" db:"target_value"`
	CurrentValue int        `json:"current_value" db:"current_value"`
	Period       GoalPeriod `json:"period" db:"period"`
	StartDate    time.Time  `json:"start_date" db:"start_date"`
	EndDate      time.Time  `json:"end_date" db:"end_date"`
	Status       GoalStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// NewGoal builds an active goal. A zero end date is derived from the period.
func NewGoal(userID, title, description string, gType GoalType, target int, period GoalPeriod, start, end time.Time) (*Goal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrGoalInvalidUserID
	}

	cleanTitle := strings.TrimSpace(title)
	if cleanTitle == "" {
		return nil, ErrGoalTitleEmpty
	}
	if len(cleanTitle) > MaxGoalTitleLen {
		return nil, ErrGoalTitleTooLong
	}

	if _, err := ParseGoalType(string(gType)); err != nil {
		return nil, err
	}
	if _, err := ParseGoalPeriod(string(period)); err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, ErrInvalidGoalTarget
	}

	now := time.Now().UTC()
	if start.IsZero() {
		start = now
	}
	start = CalendarDay(start)

	if end.IsZero() {
		end = period.EndFrom(start)
	}
	end = CalendarDay(end)
	if !end.After(start) {
		return nil, ErrInvalidGoalDates
	}

	return &Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       cleanTitle,
		Description: strings.TrimSpace(description),
		Type:        gType,
		TargetValue: target,
		Period:      period,
		StartDate:   start,
		EndDate:     end,
		Status:      GoalActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (g *Goal) ChangeStatus(status GoalStatus) error {
	if _, err := ParseGoalStatus(string(status)); err != nil {
		return err
	}
	if g.Status == status {
		return nil
	}
	if g.Status.IsFinal() {
		return fmt.Errorf("%w: %s -> %s", ErrGoalStatusTransition, g.Status, status)
	}

	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// Progress is the completion percentage, capped at 100.
func (g *Goal) Progress() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	return min(float64(g.CurrentValue)/float64(g.TargetValue)*100, 100)
}

// Covers reports whether day falls inside the goal window, bounds included.
func (g *Goal) Covers(day time.Time) bool {
	d := CalendarDay(day)
	return !d.Before(g.StartDate) && !d.After(g.EndDate)
}

// RecordProgress stores a freshly computed value. An active goal reaching its
// target becomes completed; it reports whether anything changed.
func (g *Goal) RecordProgress(value int, now time.Time) bool {
	if g.Status.IsFinal() || g.Status == GoalPaused {
		return false
	}

	changed := g.CurrentValue != value
	g.CurrentValue = value

	if value >= g.TargetValue {
		g.Status = GoalCompleted
		changed = true
	}
	if changed {
		g.UpdatedAt = now.UTC()
	}
	return changed
}
