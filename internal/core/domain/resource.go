package domain

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrResourceNotFound      = errors.New("learning resource not found")
	ErrResourceConflict      = errors.New("learning resource version conflict")
	ErrResourceTitleEmpty    = errors.New("resource title cannot be empty")
	ErrResourceTitleTooLong  = errors.New("resource title is too long (max 200 chars)")
	ErrResourceInvalidUserID = errors.New("invalid user id")
	ErrInvalidResourceType   = errors.New("invalid resource type (must be video, blog, article or course)")
	ErrInvalidResourceStatus = errors.New("invalid resource status (must be not-started, in-progress or completed)")
	ErrInvalidResourceURL    = errors.New("invalid resource url (must be an absolute http or https url)")
	ErrResourceNotesTooLong  = errors.New("resource notes are too long (max 5000 chars)")
	ErrTooManyResourceTags   = errors.New("too many tags (max 20)")
)

const (
	MaxResourceTitleLen = 200
	MaxResourceNotesLen = 5000
	MaxResourceTags     = 20
)

type ResourceType string

const (
	ResourceTypeVideo   ResourceType = "video"
	ResourceTypeBlog    ResourceType = "blog"
	ResourceTypeArticle ResourceType = "article"
	ResourceTypeCourse  ResourceType = "course"
)

func ParseResourceType(s string) (ResourceType, error) {
	t := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ResourceTypeVideo, ResourceTypeBlog, ResourceTypeArticle, ResourceTypeCourse:
		return t, nil
	}
	return "", ErrInvalidResourceType
}

type ResourceStatus string

const (
	StatusNotStarted ResourceStatus = "not-started"
	StatusInProgress ResourceStatus = "in-progress"
	StatusCompleted  ResourceStatus = "completed"
)

func ParseResourceStatus(s string) (ResourceStatus, error) {
	st := ResourceStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", ErrInvalidResourceStatus
}

type Resource struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Title       string         `json:"title"`
	Type        ResourceType   `json:"type"`
	URL         string         `json:"url,omitempty"`
	Notes       string         `json:"notes"`
	Status      ResourceStatus `json:"status"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
	Tags        []string       `json:"tags"`
	TimeSpent   int            `json:"time_spent"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// ResourceDetails carries the user-editable fields of a Resource.
type ResourceDetails struct {
	Title    string
	Type     ResourceType
	URL      string
	Notes    string
	Status   ResourceStatus
	Deadline *time.Time
	Tags     []string
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		clean := strings.TrimSpace(tag)
		if clean == "" || seen[strings.ToLower(clean)] {
			continue
		}
		seen[strings.ToLower(clean)] = true
		out = append(out, clean)
	}
	sort.Strings(out)
	return out
}

func validateDetails(d ResourceDetails) (ResourceDetails, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return d, ErrResourceTitleEmpty
	}
	if len(d.Title) > MaxResourceTitleLen {
		return d, ErrResourceTitleTooLong
	}

	rType, err := ParseResourceType(string(d.Type))
	if err != nil {
		return d, err
	}
	d.Type = rType

	if d.Status == "" {
		d.Status = StatusNotStarted
	}
	status, err := ParseResourceStatus(string(d.Status))
	if err != nil {
		return d, err
	}
	d.Status = status

	d.URL = strings.TrimSpace(d.URL)
	if d.URL != "" {
		u, err := url.Parse(d.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return d, ErrInvalidResourceURL
		}
	}

	d.Notes = strings.TrimSpace(d.Notes)
	if len(d.Notes) > MaxResourceNotesLen {
		return d, ErrResourceNotesTooLong
	}

	d.Tags = normalizeTags(d.Tags)
	if len(d.Tags) > MaxResourceTags {
		return d, ErrTooManyResourceTags
	}

	if d.Deadline != nil {
		day := CalendarDay(*d.Deadline)
		d.Deadline = &day
	}

	return d, nil
}

func NewResource(userID string, details ResourceDetails) (*Resource, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrResourceInvalidUserID
	}

	d, err := validateDetails(details)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	r := &Resource{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     d.Title,
		Type:      d.Type,
		URL:       d.URL,
		Notes:     d.Notes,
		Status:    StatusNotStarted,
		Deadline:  d.Deadline,
		Tags:      d.Tags,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.setStatus(d.Status, now)

	return r, nil
}

// Update replaces the editable fields and bumps the version.
func (r *Resource) Update(details ResourceDetails) error {
	d, err := validateDetails(details)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	r.Title = d.Title
	r.Type = d.Type
	r.URL = d.URL
	r.Notes = d.Notes
	r.Deadline = d.Deadline
	r.Tags = d.Tags
	r.setStatus(d.Status, now)
	r.touch(now)

	return nil
}

func (r *Resource) ChangeStatus(status ResourceStatus) error {
	if _, err := ParseResourceStatus(string(status)); err != nil {
		return err
	}
	if r.Status == status {
		return nil
	}

	now := time.Now().UTC()
	r.setStatus(status, now)
	r.touch(now)
	return nil
}

// AddTime adjusts the tracked study time. Negative deltas never push it below zero.
func (r *Resource) AddTime(minutes int) {
	r.TimeSpent += minutes
	if r.TimeSpent < 0 {
		r.TimeSpent = 0
	}
	r.touch(time.Now().UTC())
}

func (r *Resource) IsOverdue(now time.Time) bool {
	if r.Deadline == nil || r.Status == StatusCompleted {
		return false
	}
	return CalendarDay(now).After(*r.Deadline)
}

func (r *Resource) setStatus(status ResourceStatus, now time.Time) {
	if status == StatusCompleted && r.Status != StatusCompleted {
		r.CompletedAt = &now
	} else if status != StatusCompleted {
		r.CompletedAt = nil
	}
	r.Status = status
}

func (r *Resource) touch(now time.Time) {
	r.Version++
	r.UpdatedAt = now
}
