package http

import (
	"net/http"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/gin-gonic/gin"
)

func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}

func parseDate(c *gin.Context, name, raw string) (time.Time, bool) {
	t, err := domain.ParseCalendarDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " format, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

// dateQuery reads an optional YYYY-MM-DD query parameter, falling back to def.
func dateQuery(c *gin.Context, name string, def time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	return parseDate(c, name, raw)
}
