package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrNegativeMinutes    = errors.New("minutes studied cannot be negative")
	ErrInvalidSessionDate = errors.New("invalid session date (must be YYYY-MM-DD)")
	ErrInvalidThreshold   = errors.New("streak threshold must be at least 1 minute")
)

const (
	// DefaultStreakThreshold is the minimum number of minutes a day needs to count towards a streak.
	DefaultStreakThreshold = 15

	DateLayout = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
)

type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// DailyTotals maps a YYYY-MM-DD key to the minutes studied on that day.
type DailyTotals map[string]int

// CalendarDay drops the clock part of t, keeping the date as seen in t's own location.
// The result is midnight UTC, so two calendar days compare with ==.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DateKey(t time.Time) string {
	return CalendarDay(t).Format(DateLayout)
}

func ParseCalendarDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSessionDate, s)
	}
	return t, nil
}

func dayNumber(t time.Time) int64 {
	return CalendarDay(t).Unix() / secondsPerDay
}

// ComputeDailyTotals sums the minutes of every session per calendar day.
// Negative minutes are rejected instead of clamped.
func ComputeDailyTotals(sessions []*StudySession) (DailyTotals, error) {
	totals := make(DailyTotals)

	for _, s := range sessions {
		if s == nil {
			continue
		}
		if s.SessionDate.IsZero() {
			return nil, ErrInvalidSessionDate
		}
		if s.MinutesStudied < 0 {
			return nil, fmt.Errorf("%w: session %s on %s has %d", ErrNegativeMinutes, s.ID, DateKey(s.SessionDate), s.MinutesStudied)
		}
		totals[DateKey(s.SessionDate)] += s.MinutesStudied
	}

	return totals, nil
}

// QualifyingDays returns the days reaching threshold, most recent first.
// The streak walks below depend on this ordering.
func QualifyingDays(totals DailyTotals, threshold int) ([]time.Time, error) {
	days := make([]time.Time, 0, len(totals))

	for key, minutes := range totals {
		if minutes < threshold {
			continue
		}
		day, err := ParseCalendarDate(key)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	return days, nil
}

// CurrentStreak counts the run of consecutive days ending today, or yesterday when
// today has not qualified yet. Days after today are ignored.
func CurrentStreak(days []time.Time, today time.Time) int {
	todayNum := dayNumber(today)

	start := 0
	for start < len(days) && dayNumber(days[start]) > todayNum {
		start++
	}
	if start == len(days) {
		return 0
	}

	gap := todayNum - dayNumber(days[start])
	if gap != 0 && gap != 1 {
		return 0
	}

	return backwardRun(days[start:])
}

// LongestStreak returns the longest run of consecutive days in the descending list.
func LongestStreak(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}

	longest := 0
	run := 1

	for i := 1; i < len(days); i++ {
		switch dayNumber(days[i-1]) - dayNumber(days[i]) {
		case 0:
			continue
		case 1:
			run++
		default:
			longest = max(longest, run)
			run = 1
		}
	}

	return max(longest, run)
}

// backwardRun counts days[0] plus every following day exactly one day older than its
// predecessor, stopping at the first gap. Repeated dates neither count nor break the run.
func backwardRun(days []time.Time) int {
	run := 1
	for i := 1; i < len(days); i++ {
		switch dayNumber(days[i-1]) - dayNumber(days[i]) {
		case 0:
			continue
		case 1:
			run++
		default:
			return run
		}
	}
	return run
}

// AnalyzeStreaks computes current and longest streaks for one user's sessions.
// today is the caller's reference date; the wall clock is never read.
func AnalyzeStreaks(sessions []*StudySession, today time.Time, threshold int) (StreakResult, error) {
	if threshold < 1 {
		return StreakResult{}, ErrInvalidThreshold
	}

	totals, err := ComputeDailyTotals(sessions)
	if err != nil {
		return StreakResult{}, err
	}

	days, err := QualifyingDays(totals, threshold)
	if err != nil {
		return StreakResult{}, err
	}

	return StreakResult{
		CurrentStreak: CurrentStreak(days, today),
		LongestStreak: LongestStreak(days),
	}, nil
}

func SessionsOn(sessions []*StudySession, date time.Time) []*StudySession {
	day := CalendarDay(date)

	var out []*StudySession
	for _, s := range sessions {
		if s != nil && CalendarDay(s.SessionDate).Equal(day) {
			out = append(out, s)
		}
	}
	return out
}

func MinutesOn(sessions []*StudySession, date time.Time) int {
	total := 0
	for _, s := range SessionsOn(sessions, date) {
		total += s.MinutesStudied
	}
	return total
}

func QualifiesOn(sessions []*StudySession, date time.Time, threshold int) bool {
	return MinutesOn(sessions, date) >= threshold
}
