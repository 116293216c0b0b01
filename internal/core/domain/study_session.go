package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound   = errors.New("study session not found")
	ErrInvalidMinutes    = errors.New("minutes studied must be between 1 and 1440")
	ErrSessionInFuture   = errors.New("session date cannot be in the future")
	ErrSessionUserIDMiss = errors.New("user_id is required")
)

const MaxSessionMinutes = 24 * 60

type StudySession struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	ResourceID     *string   `json:"resource_id,omitempty" db:"resource_id"`
	SessionDate    time.Time `json:"session_date" db:"session_date"`
	MinutesStudied int       `json:"minutes_studied" db:"minutes_studied"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func NewStudySession(userID string, resourceID *string, date time.Time, minutes int) *StudySession {
	if resourceID != nil && strings.TrimSpace(*resourceID) == "" {
		resourceID = nil
	}

	return &StudySession{
		ID:             uuid.NewString(),
		UserID:         userID,
		ResourceID:     resourceID,
		SessionDate:    CalendarDay(date),
		MinutesStudied: minutes,
		CreatedAt:      time.Now().UTC(),
	}
}

func (s *StudySession) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrSessionUserIDMiss
	}
	if s.SessionDate.IsZero() {
		return ErrInvalidSessionDate
	}
	if s.MinutesStudied < 1 || s.MinutesStudied > MaxSessionMinutes {
		return ErrInvalidMinutes
	}
	return nil
}
