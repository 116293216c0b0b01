package domain

import (
	"errors"
	"time"
)

var ErrInvalidDateRange = errors.New("invalid date range")

const MaxCalendarDays = 366

// CalendarEntry rows feed the study calendar. Qualifies marks highlighted days.
type CalendarEntry struct {
	Date      string `json:"date"`
	Minutes   int    `json:"minutes"`
	Sessions  int    `json:"sessions"`
	Qualifies bool   `json:"qualifies"`
}

type DayDetail struct {
	Date      string          `json:"date"`
	Minutes   int             `json:"minutes"`
	Qualifies bool            `json:"qualifies"`
	IsToday   bool            `json:"is_today"`
	Sessions  []*StudySession `json:"sessions"`
}

type StudySummary struct {
	Days          int     `json:"days"`
	ActiveDays    int     `json:"active_days"`
	TotalMinutes  int     `json:"total_minutes"`
	MeanMinutes   float64 `json:"mean_minutes"`
	MedianMinutes float64 `json:"median_minutes"`
	P90Minutes    float64 `json:"p90_minutes"`
}

type Dashboard struct {
	Stats         LearningStats `json:"stats"`
	TimeSpent     string        `json:"time_spent"`
	Streaks       StreakResult  `json:"streaks"`
	ActiveGoals   int           `json:"active_goals"`
	OverdueCount  int           `json:"overdue_resources"`
	Summary       StudySummary  `json:"last_30_days"`
	Achievements  int           `json:"achievements"`
	ThresholdMins int           `json:"streak_threshold_minutes"`
}

// BuildCalendar returns one entry per day in [from, to], empty days included.
func BuildCalendar(sessions []*StudySession, from, to time.Time, threshold int) ([]CalendarEntry, error) {
	start := CalendarDay(from)
	end := CalendarDay(to)
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}
	if dayNumber(end)-dayNumber(start)+1 > MaxCalendarDays {
		return nil, ErrInvalidDateRange
	}

	minutes := make(map[string]int)
	counts := make(map[string]int)
	for _, s := range sessions {
		if s == nil {
			continue
		}
		key := DateKey(s.SessionDate)
		minutes[key] += s.MinutesStudied
		counts[key]++
	}

	entries := make([]CalendarEntry, 0, dayNumber(end)-dayNumber(start)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(DateLayout)
		entries = append(entries, CalendarEntry{
			Date:      key,
			Minutes:   minutes[key],
			Sessions:  counts[key],
			Qualifies: minutes[key] >= threshold,
		})
	}

	return entries, nil
}

func BuildDayDetail(sessions []*StudySession, date, today time.Time, threshold int) DayDetail {
	onDay := SessionsOn(sessions, date)
	if onDay == nil {
		onDay = []*StudySession{}
	}

	total := 0
	for _, s := range onDay {
		total += s.MinutesStudied
	}

	return DayDetail{
		Date:      DateKey(date),
		Minutes:   total,
		Qualifies: total >= threshold,
		IsToday:   DateKey(date) == DateKey(today),
		Sessions:  onDay,
	}
}
