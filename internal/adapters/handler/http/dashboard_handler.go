package http

import (
	"net/http"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *services.DashboardService
	now func() time.Time
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc, now: time.Now}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.Get)
}

// Get godoc
// @Summary  Resource stats, streaks, goals and a 30 day study summary
// @Tags     dashboard
// @Produce  json
// @Security BearerAuth
// @Param    today query string false "The client's calendar date, YYYY-MM-DD"
// @Success  200 {object} domain.Dashboard
// @Router   /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	today, ok := dateQuery(c, "today", h.now())
	if !ok {
		return
	}

	dashboard, err := h.svc.Get(c.Request.Context(), userID, today)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
