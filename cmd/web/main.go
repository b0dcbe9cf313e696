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

	"github.com/fitforge/fitforge-web/config"
	"github.com/fitforge/fitforge-web/internal/server"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	"github.com/fitforge/fitforge-web/pkg/profiling"
	"github.com/fitforge/fitforge-web/pkg/tracing"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting FitForge web",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("course_api", cfg.CourseAPI.BaseURL),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling is optional
	stopProfiler, err := profiling.InitProfiler(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics()

	// One HTTP client for the course API and the purchase trigger
	httpClient := httpclient.NewStandardClient(time.Duration(cfg.CourseAPI.TimeoutSeconds) * time.Second)
	api := courseapi.New(cfg.CourseAPI.BaseURL, httpClient)

	// The pages still render when the API is down; health reports it
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := api.Ping(pingCtx); err != nil {
		logger.Warn("Course API is not reachable at startup", zap.Error(err))
	}
	pingCancel()

	store, err := server.NewSessionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	logger.Info("Session store ready", zap.String("backend", store.Name()))

	deps, err := server.BuildDependencies(cfg, api, store, httpClient)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	router, err := server.NewRouter(ctx, cfg, deps)
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       2 * time.Minute, // video uploads
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
