package http

import (
	"net/http"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	svc *services.GoalService
}

func NewGoalHandler(svc *services.GoalService) *GoalHandler {
	return &GoalHandler{svc: svc}
}

type createGoalRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
	TargetValue int    `json:"target_value" binding:"required"`
	Period      string `json:"period" binding:"required"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type goalResponse struct {
	*domain.Goal
	Unit     string  `json:"unit"`
	Progress float64 `json:"progress"`
}

func toGoalResponse(g *domain.Goal) goalResponse {
	return goalResponse{Goal: g, Unit: g.Type.Unit(), Progress: g.Progress()}
}

func (h *GoalHandler) RegisterRoutes(router *gin.RouterGroup) {
	goals := router.Group("/goals")
	{
		goals.POST("", h.Create)
		goals.GET("", h.List)
		goals.PATCH("/:id/status", h.ChangeStatus)
	}
	router.GET("/achievements", h.Achievements)
}

// Create godoc
// @Summary  Create a time, resources or streak goal
// @Tags     goals
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body createGoalRequest true "Goal"
// @Success  201 {object} goalResponse
// @Failure  400 {object} map[string]string
// @Router   /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var start, end time.Time
	if req.StartDate != "" {
		if start, ok = parseDate(c, "start_date", req.StartDate); !ok {
			return
		}
	}
	if req.EndDate != "" {
		if end, ok = parseDate(c, "end_date", req.EndDate); !ok {
			return
		}
	}

	goal, err := h.svc.Create(c.Request.Context(), services.CreateGoalInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		TargetValue: req.TargetValue,
		Period:      req.Period,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toGoalResponse(goal))
}

func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	goals, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	c.JSON(http.StatusOK, out)
}

func (h *GoalHandler) ChangeStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.svc.ChangeStatus(c.Request.Context(), c.Param("id"), userID, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toGoalResponse(goal))
}

func (h *GoalHandler) Achievements(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	achievements, err := h.svc.Achievements(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, achievements)
}
