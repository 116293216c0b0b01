package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
)

// maxTimeRetries bounds the optimistic-lock retry loop when a resource's time is adjusted.
const maxTimeRetries = 3

type SessionService struct {
	repo      domain.SessionRepository
	resources domain.ResourceRepository
	cache     StreakCache
	notifier  ProgressNotifier
	metrics   StudyMetrics
	now       func() time.Time
}

func NewSessionService(
	repo domain.SessionRepository,
	resources domain.ResourceRepository,
	cache StreakCache,
	notifier ProgressNotifier,
	metrics StudyMetrics,
) *SessionService {
	return &SessionService{
		repo:      repo,
		resources: resources,
		cache:     orStreakCache(cache),
		notifier:  orNotifier(notifier),
		metrics:   orMetrics(metrics),
		now:       time.Now,
	}
}

type LogSessionInput struct {
	UserID     string
	ResourceID string
	// Date defaults to today when zero.
	Date    time.Time
	Minutes int
}

func (s *SessionService) LogSession(ctx context.Context, input LogSessionInput) (*domain.StudySession, error) {
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	// One day of slack lets clients east of UTC log their own "today".
	latest := domain.CalendarDay(s.now()).AddDate(0, 0, 1)
	if domain.CalendarDay(date).After(latest) {
		return nil, domain.ErrSessionInFuture
	}

	var resourceID *string
	if input.ResourceID != "" {
		resource, err := s.resources.GetByID(ctx, input.ResourceID)
		if err != nil {
			return nil, err
		}
		if resource.UserID != input.UserID {
			return nil, domain.ErrUnauthorized
		}
		resourceID = &resource.ID
	}

	session := domain.NewStudySession(input.UserID, resourceID, date, input.Minutes)
	if err := session.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("session service: failed to create session: %w", err)
	}
	defer s.historyChanged(ctx, session.UserID)

	if session.ResourceID != nil {
		if err := s.addResourceTime(ctx, *session.ResourceID, session.MinutesStudied); err != nil {
			// An error must mean nothing was logged, or a retry would count the session twice.
			if delErr := s.repo.Delete(ctx, session.ID, session.UserID); delErr != nil {
				log.Printf("[SESSION] Rollback of session %s failed: %v", session.ID, delErr)
			}
			return nil, err
		}
	}

	s.metrics.SessionLogged(ctx, session.MinutesStudied, session.ResourceID != nil)

	return session, nil
}

func (s *SessionService) GetByID(ctx context.Context, id string, userID string) (*domain.StudySession, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// List returns the whole history when both bounds are zero.
func (s *SessionService) List(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error) {
	if from.IsZero() && to.IsZero() {
		return s.repo.ListByUserID(ctx, userID)
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}
	return s.repo.ListByUserIDAndDateRange(ctx, userID, domain.CalendarDay(from), domain.CalendarDay(to))
}

func (s *SessionService) Delete(ctx context.Context, id string, userID string) error {
	session, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	defer s.historyChanged(ctx, userID)

	if session.ResourceID != nil {
		err := s.addResourceTime(ctx, *session.ResourceID, -session.MinutesStudied)
		if err != nil && !errors.Is(err, domain.ErrResourceNotFound) {
			if restoreErr := s.repo.Create(ctx, session); restoreErr != nil {
				log.Printf("[SESSION] Restore of session %s failed: %v", session.ID, restoreErr)
			}
			return err
		}
	}

	s.metrics.SessionDeleted(ctx, session.MinutesStudied)

	return nil
}

// historyChanged runs after every write that reached the session store,
// whether or not the rest of the operation succeeded.
func (s *SessionService) historyChanged(ctx context.Context, userID string) {
	s.cache.Invalidate(ctx, userID)
	s.notifier.Enqueue(userID)
}

func (s *SessionService) addResourceTime(ctx context.Context, resourceID string, minutes int) error {
	var lastErr error
	for attempt := 0; attempt < maxTimeRetries; attempt++ {
		resource, err := s.resources.GetByID(ctx, resourceID)
		if err != nil {
			return err
		}

		resource.AddTime(minutes)

		lastErr = s.resources.Update(ctx, resource)
		if !errors.Is(lastErr, domain.ErrResourceConflict) {
			return lastErr
		}
		log.Printf("[SESSION] Version conflict on resource %s, retrying (%d/%d)", resourceID, attempt+1, maxTimeRetries)
	}
	return fmt.Errorf("session service: failed to update time spent: %w", lastErr)
}
