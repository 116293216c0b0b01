package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-learn/internal/adapters/handler/http/middleware"
)

type routeRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// newTestRouter trusts X-User-ID instead of a bearer token.
func newTestRouter(handlers ...routeRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return r
}

func doRequest(router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
