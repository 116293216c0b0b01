package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("resource does not belong to the user")
)

type ResourceRepository interface {
	// Create persists a new learning resource.
	Create(ctx context.Context, resource *Resource) error

	// GetByID retrieves a resource by its unique identifier.
	GetByID(ctx context.Context, id string) (*Resource, error)

	// ListByUserID retrieves all resources of a user, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*Resource, error)

	// Update stores a resource whose Version was already bumped by the domain.
	// Implementations must reject the write when the stored version is not Version-1.
	Update(ctx context.Context, resource *Resource) error

	// Delete removes a resource. userID guards against deleting someone else's data.
	Delete(ctx context.Context, id string, userID string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *StudySession) error

	GetByID(ctx context.Context, id string) (*StudySession, error)

	// ListByUserID returns the user's full history, which the streak analyzer needs.
	ListByUserID(ctx context.Context, userID string) ([]*StudySession, error)

	// ListByUserIDAndDateRange returns sessions whose date is within [from, to].
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*StudySession, error)

	Delete(ctx context.Context, id string, userID string) error
}

type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) error
	GetByID(ctx context.Context, id string) (*Goal, error)
	ListByUserID(ctx context.Context, userID string) ([]*Goal, error)
	Update(ctx context.Context, goal *Goal) error

	// UpdateProgress stores CurrentValue and Status only while the stored goal is still active,
	// so a background recompute never overrides a status the user set meanwhile.
	// It reports whether the row was written.
	UpdateProgress(ctx context.Context, goal *Goal) (bool, error)
}

type AchievementRepository interface {
	// Award stores the achievement unless the user already holds one with the same Key.
	// It reports whether a new row was written.
	Award(ctx context.Context, achievement *Achievement) (bool, error)

	// ListByUserID returns the user's achievements, most recently earned first.
	ListByUserID(ctx context.Context, userID string) ([]*Achievement, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
