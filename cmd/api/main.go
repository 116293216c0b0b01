package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-learn/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-learn/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-learn/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-learn/internal/adapters/telemetry"
	"github.com/comitanigiacomo/kanso-learn/internal/config"
	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
	"github.com/comitanigiacomo/kanso-learn/internal/core/workers"
	"github.com/comitanigiacomo/kanso-learn/migrations"
)

// @title           Kanso Learn API
// @version         1.0
// @description     Learning resource tracker with study sessions, streaks and goals.
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: Invalid configuration: %v", err)
	}

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.Database.PostgresDSN())
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	migrator, err := repository.NewMigrator(db, migrations.FS)
	if err != nil {
		log.Fatalf("Critical: Failed to load migrations: %v", err)
	}
	applied, err := migrator.Up(ctx)
	if err != nil {
		log.Fatalf("Critical: Failed to migrate database: %v", err)
	}
	log.Printf("[MIGRATE] %d migration(s) applied, schema at version %d", applied, migrator.Latest())

	recorder, shutdownMetrics, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("Critical: Failed to set up metrics: %v", err)
	}

	userRepo := repository.NewPostgresUserRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	goalRepo := repository.NewPostgresGoalRepository(db)
	achievementRepo := repository.NewPostgresAchievementRepository(db)

	var resourceRepo domain.ResourceRepository = repository.NewPostgresResourceRepository(db)
	var streakCache services.StreakCache
	var rdb *redis.Client

	if cfg.Redis.Enabled() {
		rdb, err = cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Critical: Failed to connect to redis: %v", err)
		}
		defer rdb.Close()

		resourceRepo = repository.NewCachedResourceRepository(resourceRepo, rdb)
		streakCache = cache.NewRedisStreakCache(rdb)
		log.Println("Redis connected: caching and rate limiting enabled.")
	} else {
		log.Println("REDIS_HOST not set: running without cache and rate limiting.")
	}

	progressWorker := workers.NewProgressWorker(resourceRepo, sessionRepo, goalRepo, achievementRepo, cfg.StreakThreshold)
	progressWorker.Start(ctx)

	tokenService := services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	resourceService := services.NewResourceService(resourceRepo, progressWorker, recorder)
	sessionService := services.NewSessionService(sessionRepo, resourceRepo, streakCache, progressWorker, recorder)
	statsService := services.NewStatsService(sessionRepo, streakCache, cfg.StreakThreshold)
	goalService := services.NewGoalService(goalRepo, achievementRepo, progressWorker)
	dashboardService := services.NewDashboardService(resourceRepo, sessionRepo, goalRepo, achievementRepo, cfg.StreakThreshold)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService),
		ResourceHandler:  adapterHTTP.NewResourceHandler(resourceService),
		SessionHandler:   adapterHTTP.NewSessionHandler(sessionService),
		StreakHandler:    adapterHTTP.NewStreakHandler(statsService),
		GoalHandler:      adapterHTTP.NewGoalHandler(goalService),
		DashboardHandler: adapterHTTP.NewDashboardHandler(dashboardService),
		Tokens:           tokenService,
		DB:               db,
		Redis:            rdb,
		RateLimit:        cfg.RateLimit.Requests,
		RateLimitWindow:  cfg.RateLimit.Window,
		StartTime:        startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Learn running on http://localhost:%s (streak threshold %d min)", cfg.Port, cfg.StreakThreshold)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	stop()

	if err := shutdownMetrics(shutdownCtx); err != nil {
		log.Printf("[METRICS] Flush failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
