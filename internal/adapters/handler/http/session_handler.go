package http

import (
	"net/http"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	svc *services.SessionService
}

func NewSessionHandler(svc *services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type logSessionRequest struct {
	ResourceID     string `json:"resource_id"`
	SessionDate    string `json:"session_date"`
	MinutesStudied int    `json:"minutes_studied" binding:"required"`
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.Log)
		sessions.GET("", h.List)
		sessions.DELETE("/:id", h.Delete)
	}
}

// Log godoc
// @Summary  Log minutes studied on a day, optionally against a resource
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body logSessionRequest true "Session"
// @Success  201 {object} domain.StudySession
// @Failure  400,403,404 {object} map[string]string
// @Router   /sessions [post]
func (h *SessionHandler) Log(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req logSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var date time.Time
	if req.SessionDate != "" {
		var ok bool
		if date, ok = parseDate(c, "session_date", req.SessionDate); !ok {
			return
		}
	}

	session, err := h.svc.LogSession(c.Request.Context(), services.LogSessionInput{
		UserID:     userID,
		ResourceID: req.ResourceID,
		Date:       date,
		Minutes:    req.MinutesStudied,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// List godoc
// @Summary  List sessions, newest first. from and to must be given together.
// @Tags     sessions
// @Produce  json
// @Security BearerAuth
// @Param    from query string false "YYYY-MM-DD"
// @Param    to   query string false "YYYY-MM-DD"
// @Success  200 {array} domain.StudySession
// @Router   /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	from, ok := dateQuery(c, "from", time.Time{})
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to", time.Time{})
	if !ok {
		return
	}

	sessions, err := h.svc.List(c.Request.Context(), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
