package http

import (
	"net/http"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
	"github.com/gin-gonic/gin"
)

// defaultCalendarDays is the window shown when the client omits from.
const defaultCalendarDays = 35

type StreakHandler struct {
	svc *services.StatsService
	now func() time.Time
}

func NewStreakHandler(svc *services.StatsService) *StreakHandler {
	return &StreakHandler{svc: svc, now: time.Now}
}

type streakResponse struct {
	domain.StreakResult
	Today            string `json:"today"`
	ThresholdMinutes int    `json:"threshold_minutes"`
}

func (h *StreakHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/streaks", h.GetStreaks)
	router.GET("/calendar", h.GetCalendar)
	router.GET("/calendar/:date", h.GetDay)
}

// GetStreaks godoc
// @Summary  Current and longest study streak
// @Description A day counts when its sessions add up to the threshold. The current streak may start yesterday.
// @Tags     streaks
// @Produce  json
// @Security BearerAuth
// @Param    today query string false "The client's calendar date, YYYY-MM-DD"
// @Success  200 {object} streakResponse
// @Router   /streaks [get]
func (h *StreakHandler) GetStreaks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	today, ok := dateQuery(c, "today", h.now())
	if !ok {
		return
	}

	result, err := h.svc.GetStreaks(c.Request.Context(), userID, today)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, streakResponse{
		StreakResult:     result,
		Today:            domain.DateKey(today),
		ThresholdMinutes: h.svc.Threshold(),
	})
}

// GetCalendar godoc
// @Summary  One entry per day with minutes studied and whether the day qualifies
// @Tags     streaks
// @Produce  json
// @Security BearerAuth
// @Param    from query string false "YYYY-MM-DD, defaults to five weeks before to"
// @Param    to   query string false "YYYY-MM-DD, defaults to today"
// @Success  200 {array} domain.CalendarEntry
// @Failure  400 {object} map[string]string
// @Router   /calendar [get]
func (h *StreakHandler) GetCalendar(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	to, ok := dateQuery(c, "to", domain.CalendarDay(h.now()))
	if !ok {
		return
	}
	from, ok := dateQuery(c, "from", to.AddDate(0, 0, -(defaultCalendarDays - 1)))
	if !ok {
		return
	}

	entries, err := h.svc.GetCalendar(c.Request.Context(), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetDay godoc
// @Summary  Sessions and total for a single day
// @Tags     streaks
// @Produce  json
// @Security BearerAuth
// @Param    date  path  string true  "YYYY-MM-DD"
// @Param    today query string false "The client's calendar date, YYYY-MM-DD"
// @Success  200 {object} domain.DayDetail
// @Router   /calendar/{date} [get]
func (h *StreakHandler) GetDay(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	date, ok := parseDate(c, "date", c.Param("date"))
	if !ok {
		return
	}
	today, ok := dateQuery(c, "today", h.now())
	if !ok {
		return
	}

	detail, err := h.svc.GetDay(c.Request.Context(), userID, date, today)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
