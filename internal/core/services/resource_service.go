package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
)

type ResourceService struct {
	repo     domain.ResourceRepository
	notifier ProgressNotifier
	metrics  StudyMetrics
	now      func() time.Time
}

func NewResourceService(repo domain.ResourceRepository, notifier ProgressNotifier, metrics StudyMetrics) *ResourceService {
	return &ResourceService{
		repo:     repo,
		notifier: orNotifier(notifier),
		metrics:  orMetrics(metrics),
		now:      time.Now,
	}
}

type CreateResourceInput struct {
	UserID   string
	Title    string
	Type     string
	URL      string
	Notes    string
	Status   string
	Deadline *time.Time
	Tags     []string
}

type UpdateResourceInput struct {
	ID       string
	UserID   string
	Title    string
	Type     string
	URL      string
	Notes    string
	Status   string
	Deadline *time.Time
	Tags     []string
	Version  int
}

func (s *ResourceService) Create(ctx context.Context, input CreateResourceInput) (*domain.Resource, error) {
	resource, err := domain.NewResource(input.UserID, domain.ResourceDetails{
		Title:    input.Title,
		Type:     domain.ResourceType(input.Type),
		URL:      input.URL,
		Notes:    input.Notes,
		Status:   domain.ResourceStatus(input.Status),
		Deadline: input.Deadline,
		Tags:     input.Tags,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, fmt.Errorf("resource service: failed to create resource: %w", err)
	}

	if resource.Status == domain.StatusCompleted {
		s.metrics.ResourceCompleted(ctx)
		s.notifier.Enqueue(resource.UserID)
	}

	return resource, nil
}

func (s *ResourceService) GetByID(ctx context.Context, id string, userID string) (*domain.Resource, error) {
	resource, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return resource, nil
}

func (s *ResourceService) List(ctx context.Context, userID string, filter domain.ResourceFilter) ([]*domain.Resource, error) {
	resources, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.FilterResources(resources, filter), nil
}

// Update replaces the editable fields. A Version of 0 skips the client-side conflict check.
func (s *ResourceService) Update(ctx context.Context, input UpdateResourceInput) (*domain.Resource, error) {
	resource, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && resource.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrResourceConflict, input.Version, resource.Version)
	}

	wasCompleted := resource.Status == domain.StatusCompleted

	status := domain.ResourceStatus(input.Status)
	if status == "" {
		status = resource.Status
	}

	err = resource.Update(domain.ResourceDetails{
		Title:    input.Title,
		Type:     domain.ResourceType(input.Type),
		URL:      input.URL,
		Notes:    input.Notes,
		Status:   status,
		Deadline: input.Deadline,
		Tags:     input.Tags,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, resource); err != nil {
		return nil, err
	}

	s.afterStatusChange(ctx, resource, wasCompleted)
	return resource, nil
}

func (s *ResourceService) ChangeStatus(ctx context.Context, id string, userID string, status string) (*domain.Resource, error) {
	parsed, err := domain.ParseResourceStatus(status)
	if err != nil {
		return nil, err
	}

	resource, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	wasCompleted := resource.Status == domain.StatusCompleted
	if err := resource.ChangeStatus(parsed); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, resource); err != nil {
		return nil, err
	}

	s.afterStatusChange(ctx, resource, wasCompleted)
	return resource, nil
}

func (s *ResourceService) Delete(ctx context.Context, id string, userID string) error {
	resource, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	if resource.Status == domain.StatusCompleted {
		s.notifier.Enqueue(userID)
	}
	return nil
}

func (s *ResourceService) Tags(ctx context.Context, userID string) ([]string, error) {
	resources, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.AllTags(resources), nil
}

func (s *ResourceService) Stats(ctx context.Context, userID string) (domain.LearningStats, error) {
	resources, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return domain.LearningStats{}, err
	}
	return domain.ComputeLearningStats(resources), nil
}

func (s *ResourceService) afterStatusChange(ctx context.Context, r *domain.Resource, wasCompleted bool) {
	isCompleted := r.Status == domain.StatusCompleted
	if isCompleted == wasCompleted {
		return
	}
	if isCompleted {
		s.metrics.ResourceCompleted(ctx)
	}
	s.notifier.Enqueue(r.UserID)
}
