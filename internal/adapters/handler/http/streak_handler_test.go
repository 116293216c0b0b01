package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-learn/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-learn/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
)

// setupStreakRouter gives user-1 qualifying days on Mar 8-10 and Mar 12-14 2024.
// Mar 11 has 10 minutes split over two sessions, under the threshold.
func setupStreakRouter(t *testing.T) *gin.Engine {
	t.Helper()
	repo := repository.NewInMemorySessionRepository()
	ctx := context.Background()

	days := map[string][]int{
		"2024-03-08": {15},
		"2024-03-09": {30},
		"2024-03-10": {10, 10},
		"2024-03-11": {5, 5},
		"2024-03-12": {60},
		"2024-03-13": {14, 1},
		"2024-03-14": {45},
	}
	for date, minutes := range days {
		d, err := domain.ParseCalendarDate(date)
		require.NoError(t, err)
		for _, m := range minutes {
			require.NoError(t, repo.Create(ctx, domain.NewStudySession("user-1", nil, d, m)))
		}
	}

	svc := services.NewStatsService(repo, nil, domain.DefaultStreakThreshold)
	return newTestRouter(adapterHTTP.NewStreakHandler(svc))
}

func TestGetStreaks(t *testing.T) {
	router := setupStreakRouter(t)

	tests := []struct {
		today   string
		current int
		longest int
	}{
		{"2024-03-14", 3, 3},
		{"2024-03-15", 3, 3},
		{"2024-03-16", 0, 3},
		{"2024-03-10", 3, 3},
		{"2024-03-11", 3, 3},
	}
	for _, tt := range tests {
		t.Run("today="+tt.today, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/api/v1/streaks?today="+tt.today, "user-1", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				CurrentStreak    int    `json:"current_streak"`
				LongestStreak    int    `json:"longest_streak"`
				Today            string `json:"today"`
				ThresholdMinutes int    `json:"threshold_minutes"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.current, body.CurrentStreak)
			assert.Equal(t, tt.longest, body.LongestStreak)
			assert.Equal(t, tt.today, body.Today)
			assert.Equal(t, 15, body.ThresholdMinutes)
		})
	}

	t.Run("No history", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/streaks?today=2024-03-14", "user-2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"current_streak":0`)
		assert.Contains(t, w.Body.String(), `"longest_streak":0`)
	})

	t.Run("Fail: 400 bad today", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/streaks?today=yesterday", "user-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetCalendar(t *testing.T) {
	router := setupStreakRouter(t)

	t.Run("One entry per day", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/calendar?from=2024-03-10&to=2024-03-15", "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var entries []domain.CalendarEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 6)

		assert.Equal(t, domain.CalendarEntry{Date: "2024-03-10", Minutes: 20, Sessions: 2, Qualifies: true}, entries[0])
		assert.Equal(t, domain.CalendarEntry{Date: "2024-03-11", Minutes: 10, Sessions: 2, Qualifies: false}, entries[1])
		assert.Equal(t, domain.CalendarEntry{Date: "2024-03-15", Minutes: 0, Sessions: 0, Qualifies: false}, entries[5])
	})

	t.Run("Default window ends today", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/calendar?to=2024-03-14", "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var entries []domain.CalendarEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 35)
		assert.Equal(t, "2024-03-14", entries[len(entries)-1].Date)
	})

	for _, query := range []string{
		"?from=2024-03-15&to=2024-03-10",
		"?from=2022-01-01&to=2024-03-10",
		"?from=March&to=2024-03-10",
	} {
		t.Run("Fail: 400 "+query, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/api/v1/calendar"+query, "user-1", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetCalendarDay(t *testing.T) {
	router := setupStreakRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/calendar/2024-03-13?today=2024-03-13", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var day domain.DayDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
	assert.Equal(t, "2024-03-13", day.Date)
	assert.Equal(t, 15, day.Minutes)
	assert.True(t, day.Qualifies)
	assert.True(t, day.IsToday)
	assert.Len(t, day.Sessions, 2)

	w = doRequest(router, http.MethodGet, "/api/v1/calendar/2024-03-01", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessions":[]`)

	w = doRequest(router, http.MethodGet, "/api/v1/calendar/not-a-date", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
