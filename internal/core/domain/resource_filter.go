package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ResourceFilter narrows a resource list. Zero-valued fields match everything.
type ResourceFilter struct {
	Status ResourceStatus
	Type   ResourceType
	Tag    string
	Query  string
}

func (f ResourceFilter) IsEmpty() bool {
	return f.Status == "" && f.Type == "" && f.Tag == "" && strings.TrimSpace(f.Query) == ""
}

func (f ResourceFilter) Matches(r *Resource) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Tag != "" && !containsTag(r.Tags, f.Tag) {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Notes), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func FilterResources(resources []*Resource, f ResourceFilter) []*Resource {
	out := make([]*Resource, 0, len(resources))
	for _, r := range resources {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// AllTags returns every tag used across resources, sorted and without duplicates.
func AllTags(resources []*Resource) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, r := range resources {
		for _, tag := range r.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

type LearningStats struct {
	Total          int     `json:"total"`
	NotStarted     int     `json:"not_started"`
	InProgress     int     `json:"in_progress"`
	Completed      int     `json:"completed"`
	TotalTimeSpent int     `json:"total_time_spent"`
	CompletionRate float64 `json:"completion_rate"`
	ProgressRate   float64 `json:"progress_rate"`
}

func ComputeLearningStats(resources []*Resource) LearningStats {
	stats := LearningStats{Total: len(resources)}

	for _, r := range resources {
		switch r.Status {
		case StatusNotStarted:
			stats.NotStarted++
		case StatusInProgress:
			stats.InProgress++
		case StatusCompleted:
			stats.Completed++
		}
		stats.TotalTimeSpent += r.TimeSpent
	}

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
		stats.ProgressRate = float64(stats.InProgress+stats.Completed) / float64(stats.Total) * 100
	}

	return stats
}

// FormatMinutes renders a duration the way the dashboard shows it: "1h 5m" or "45m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
