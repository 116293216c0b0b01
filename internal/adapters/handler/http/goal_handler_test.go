package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-learn/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-learn/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
)

type goalBody struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TargetValue  int     `json:"target_value"`
	CurrentValue int     `json:"current_value"`
	Unit         string  `json:"unit"`
	Progress     float64 `json:"progress"`
}

func setupGoalRouter() (*gin.Engine, *repository.InMemoryAchievementRepository) {
	achievements := repository.NewInMemoryAchievementRepository()
	svc := services.NewGoalService(repository.NewInMemoryGoalRepository(), achievements, nil)
	return newTestRouter(adapterHTTP.NewGoalHandler(svc)), achievements
}

func createGoal(t *testing.T, router *gin.Engine, userID string, body map[string]interface{}) goalBody {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/v1/goals", userID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var g goalBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	return g
}

func TestCreateGoal(t *testing.T) {
	t.Run("Success: end date follows the period", func(t *testing.T) {
		router, _ := setupGoalRouter()

		g := createGoal(t, router, "user-1", map[string]interface{}{
			"title": "Study five hours", "type": "time", "target_value": 300,
			"period": "weekly", "start_date": "2024-03-11",
		})

		assert.Equal(t, "active", g.Status)
		assert.Equal(t, "minutes", g.Unit)
		assert.Zero(t, g.Progress)
		assert.Contains(t, g.StartDate, "2024-03-11")
		assert.NotEqual(t, g.StartDate, g.EndDate)
	})

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"unknown type", map[string]interface{}{"title": "X", "type": "pages", "target_value": 1, "period": "weekly"}},
		{"unknown period", map[string]interface{}{"title": "X", "type": "time", "target_value": 1, "period": "daily"}},
		{"negative target", map[string]interface{}{"title": "X", "type": "time", "target_value": -3, "period": "weekly"}},
		{"end before start", map[string]interface{}{
			"title": "X", "type": "streak", "target_value": 7, "period": "monthly",
			"start_date": "2024-03-11", "end_date": "2024-03-01",
		}},
		{"bad date", map[string]interface{}{"title": "X", "type": "time", "target_value": 1, "period": "weekly", "start_date": "soon"}},
		{"missing title", map[string]interface{}{"type": "time", "target_value": 1, "period": "weekly"}},
	}
	for _, tt := range tests {
		t.Run("Fail: 400 "+tt.name, func(t *testing.T) {
			router, _ := setupGoalRouter()
			w := doRequest(router, http.MethodPost, "/api/v1/goals", "user-1", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestListGoals(t *testing.T) {
	router, _ := setupGoalRouter()
	createGoal(t, router, "user-1", map[string]interface{}{"title": "Finish 3 courses", "type": "resources", "target_value": 3, "period": "monthly"})
	createGoal(t, router, "user-2", map[string]interface{}{"title": "Not mine", "type": "time", "target_value": 60, "period": "weekly"})

	w := doRequest(router, http.MethodGet, "/api/v1/goals", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var goals []goalBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goals))
	require.Len(t, goals, 1)
	assert.Equal(t, "resources", goals[0].Unit)
}

func TestChangeGoalStatus(t *testing.T) {
	router, _ := setupGoalRouter()
	g := createGoal(t, router, "user-1", map[string]interface{}{"title": "Week streak", "type": "streak", "target_value": 7, "period": "monthly"})
	path := "/api/v1/goals/" + g.ID + "/status"

	w := doRequest(router, http.MethodPatch, path, "user-1", map[string]string{"status": "paused"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"paused"`)

	w = doRequest(router, http.MethodPatch, path, "user-2", map[string]string{"status": "active"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodPatch, path, "user-1", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPatch, path, "user-1", map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPatch, path, "user-1", map[string]string{"status": "active"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, http.MethodPatch, "/api/v1/goals/missing/status", "user-1", map[string]string{"status": "active"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAchievements(t *testing.T) {
	router, achievements := setupGoalRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/achievements", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	_, err := achievements.Award(context.Background(), domain.NewAchievement("user-1", domain.Milestones[0], time.Now()))
	require.NoError(t, err)

	w = doRequest(router, http.MethodGet, "/api/v1/achievements", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []domain.Achievement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, domain.Milestones[0].Key, list[0].Key)
}
