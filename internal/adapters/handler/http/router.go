package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/comitanigiacomo/kanso-learn/docs"
	"github.com/comitanigiacomo/kanso-learn/internal/adapters/handler/http/middleware"
)

type RouterDependencies struct {
	AuthHandler      *AuthHandler
	ResourceHandler  *ResourceHandler
	SessionHandler   *SessionHandler
	StreakHandler    *StreakHandler
	GoalHandler      *GoalHandler
	DashboardHandler *DashboardHandler
	Tokens           middleware.TokenValidator
	DB               *sqlx.DB
	// Redis is optional. Without it there is no rate limiting.
	Redis           *redis.Client
	RateLimit       int
	RateLimitWindow time.Duration
	StartTime       time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	if deps.Redis != nil && deps.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateLimitWindow))
	}

	router.GET("/health", healthHandler(deps))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		deps.ResourceHandler.RegisterRoutes(protected)
		deps.SessionHandler.RegisterRoutes(protected)
		deps.StreakHandler.RegisterRoutes(protected)
		deps.GoalHandler.RegisterRoutes(protected)
		deps.DashboardHandler.RegisterRoutes(protected)
	}

	return router
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		dbStatus := "connected"
		if deps.DB == nil || deps.DB.PingContext(ctx) != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if deps.Redis.Ping(ctx).Err() != nil {
				redisStatus = "unreachable"
			}
		}

		status, statusCode := "ok", http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			status, statusCode = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
