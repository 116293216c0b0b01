package domain

import (
	"time"

	"github.com/google/uuid"
)

type AchievementCategory string

const (
	AchievementStreak     AchievementCategory = "streak"
	AchievementTime       AchievementCategory = "time"
	AchievementCompletion AchievementCategory = "completion"
	AchievementMilestone  AchievementCategory = "milestone"
)

type Achievement struct {
	ID          string              `json:"id" db:"id"`
	UserID      string              `json:"user_id" db:"user_id"`
	Key         string              `json:"key" db:"key"`
	Title       string              `json:"title" db:"title"`
	Description string              `json:"description,omitempty" db:"description"`
	Icon        string              `json:"icon" db:"icon"`
	Category    AchievementCategory `json:"category" db:"category"`
	EarnedAt    time.Time           `json:"earned_at" db:"earned_at"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
}

// UserProgress is the snapshot milestones are checked against.
type UserProgress struct {
	LongestStreak      int
	TotalMinutes       int
	CompletedResources int
	SessionsLogged     int
}

type Milestone struct {
	Key         string
	Title       string
	Description string
	Icon        string
	Category    AchievementCategory
	Reached     func(p UserProgress) bool
}

var Milestones = []Milestone{
	{
		Key: "first_session", Title: "First Step", Icon: "🌱", Category: AchievementMilestone,
		Description: "Logged your first study session",
		Reached:     func(p UserProgress) bool { return p.SessionsLogged >= 1 },
	},
	{
		Key: "streak_3", Title: "Warming Up", Icon: "🔥", Category: AchievementStreak,
		Description: "Studied 3 days in a row",
		Reached:     func(p UserProgress) bool { return p.LongestStreak >= 3 },
	},
	{
		Key: "streak_7", Title: "One Week Strong", Icon: "🔥", Category: AchievementStreak,
		Description: "Studied 7 days in a row",
		Reached:     func(p UserProgress) bool { return p.LongestStreak >= 7 },
	},
	{
		Key: "streak_30", Title: "Unstoppable", Icon: "🏆", Category: AchievementStreak,
		Description: "Studied 30 days in a row",
		Reached:     func(p UserProgress) bool { return p.LongestStreak >= 30 },
	},
	{
		Key: "time_60", Title: "First Hour", Icon: "⏱️", Category: AchievementTime,
		Description: "Studied for a total of 1 hour",
		Reached:     func(p UserProgress) bool { return p.TotalMinutes >= 60 },
	},
	{
		Key: "time_600", Title: "Ten Hours In", Icon: "⏱️", Category: AchievementTime,
		Description: "Studied for a total of 10 hours",
		Reached:     func(p UserProgress) bool { return p.TotalMinutes >= 600 },
	},
	{
		Key: "time_6000", Title: "Centurion", Icon: "🎓", Category: AchievementTime,
		Description: "Studied for a total of 100 hours",
		Reached:     func(p UserProgress) bool { return p.TotalMinutes >= 6000 },
	},
	{
		Key: "completed_1", Title: "Finisher", Icon: "✅", Category: AchievementCompletion,
		Description: "Completed your first learning resource",
		Reached:     func(p UserProgress) bool { return p.CompletedResources >= 1 },
	},
	{
		Key: "completed_10", Title: "Bookworm", Icon: "📚", Category: AchievementCompletion,
		Description: "Completed 10 learning resources",
		Reached:     func(p UserProgress) bool { return p.CompletedResources >= 10 },
	},
}

func ReachedMilestones(p UserProgress) []Milestone {
	var out []Milestone
	for _, m := range Milestones {
		if m.Reached(p) {
			out = append(out, m)
		}
	}
	return out
}

func NewAchievement(userID string, m Milestone, earnedAt time.Time) *Achievement {
	now := time.Now().UTC()
	return &Achievement{
		ID:          uuid.NewString(),
		UserID:      userID,
		Key:         m.Key,
		Title:       m.Title,
		Description: m.Description,
		Icon:        m.Icon,
		Category:    m.Category,
		EarnedAt:    earnedAt.UTC(),
		CreatedAt:   now,
	}
}
