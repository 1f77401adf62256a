package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askwhyharsh/arlocations/internal/api"
	"github.com/askwhyharsh/arlocations/internal/config"
	"github.com/askwhyharsh/arlocations/internal/geomath"
	"github.com/askwhyharsh/arlocations/internal/place"
	"github.com/askwhyharsh/arlocations/internal/placement"
	"github.com/askwhyharsh/arlocations/internal/ratelimit"
	"github.com/askwhyharsh/arlocations/internal/render"
	"github.com/askwhyharsh/arlocations/internal/report"
	"github.com/askwhyharsh/arlocations/internal/scene"
	"github.com/askwhyharsh/arlocations/internal/session"
	"github.com/askwhyharsh/arlocations/internal/storage"
	"github.com/askwhyharsh/arlocations/internal/websocket"
	"github.com/askwhyharsh/arlocations/pkg/logger"
	"github.com/askwhyharsh/arlocations/pkg/validator"
)

func main() {
	// Load configuration (and .env, if present)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(cfg.Server.Env, cfg.Monitoring.LogLevel)
	if zl, ok := appLogger.(*logger.ZapLogger); ok {
		defer zl.Sync()
	}
	appLogger.Info("Starting AR locations server...")

	// Initialize Redis, falling back to process memory
	var redisClient storage.RedisClient
	redisClient, err = storage.NewRedisClient(cfg)
	if err != nil {
		appLogger.Warn("Redis unavailable, using in-memory store", "address", cfg.RedisAddr(), "error", err)
		redisClient = storage.NewMemoryClient()
	} else {
		appLogger.Info("Connected to Redis", "address", cfg.RedisAddr())
	}
	defer redisClient.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := place.NewCatalog(place.DefaultPlaces(), uint(cfg.Catalog.GeohashPrecision))
	if err != nil {
		appLogger.Error("Invalid place catalog", "error", err)
		os.Exit(1)
	}

	solver := placement.NewSolver(placement.Config{
		ScaleNumerator: cfg.Placement.ScaleNumerator,
		MinScale:       cfg.Placement.MinScale,
		MaxScale:       cfg.Placement.MaxScale,
		MinDistance:    cfg.Placement.MinDistanceMeters,
		Alignment:      placement.Alignment(cfg.Placement.Alignment),
	})

	labels := render.NewTextLabeler(cfg.Label.ImageSize)
	reports := report.NewStore(redisClient, cfg.ReportTTL())

	sessionManager := session.NewManager(session.Dependencies{
		Catalog: catalog,
		Solver:  solver,
		Labels:  labels,
		Frustum: render.ViewFrustum{},
		Reports: reports,
		Scene: scene.Config{
			Transition:  scene.NewTransition(cfg.Placement.Transition, cfg.Placement.InterpolationFactor),
			LabelOffset: geomath.Vec3{Y: cfg.Label.OffsetY},
			LabelSize:   cfg.Label.PlaneSize,
		},
	}, session.ManagerConfig{
		IdleTTL:   cfg.IdleTTL(),
		QueueSize: cfg.Session.QueueSize,
	}, appLogger)

	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit)
	rateLimitMiddleware := ratelimit.NewMiddleware(rateLimiter, appLogger)

	// Removed and evicted sessions take their shared state with them
	sessionManager.OnRemove(reports.Delete)
	sessionManager.OnRemove(rateLimiter.ResetLimits)

	val := validator.NewValidator()

	// Initialize WebSocket hub
	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)

	wsHandler := websocket.NewHandler(
		hub,
		sessionManager,
		rateLimiter,
		val,
		scene.Camera{
			FieldOfView: cfg.Camera.FieldOfView,
			Aspect:      cfg.Camera.Aspect,
			Near:        cfg.Camera.Near,
			Far:         cfg.Camera.Far,
		},
		appLogger,
	)

	apiHandler := api.NewHandler(
		sessionManager,
		catalog,
		reports,
		labels,
		rateLimiter,
		val,
		appLogger,
	)

	// Start background services
	managerDone := make(chan struct{})
	go func() {
		sessionManager.Start(ctx)
		close(managerDone)
	}()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.LoggingMiddleware(appLogger))
	api.SetupRoutes(router, apiHandler, wsHandler, rateLimitMiddleware, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Server starting", "address", srv.Addr, "env", cfg.Server.Env, "places", catalog.Len())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")

	// Cancel context to stop background services
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
	<-managerDone

	appLogger.Info("Server stopped")
}
