package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cropsight/cropsight/internal/analysis"
	"github.com/cropsight/cropsight/internal/api"
	"github.com/cropsight/cropsight/internal/config"
	"github.com/cropsight/cropsight/internal/imagery"
	"github.com/cropsight/cropsight/internal/logging"
	"github.com/cropsight/cropsight/internal/metrics"
	"github.com/cropsight/cropsight/internal/notify"
	"github.com/cropsight/cropsight/internal/repository"
	"github.com/cropsight/cropsight/internal/yield"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if dir := filepath.Dir(cfg.DB.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Fatalf("Failed to create database directory: %v", err)
		}
	}
	store, err := repository.NewSQLiteStore(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := imagery.NewClient(imagery.ClientConfig{
		BaseURL:      cfg.Imagery.BaseURL,
		TokenURL:     cfg.Imagery.TokenURL,
		ClientID:     cfg.Imagery.ClientID,
		ClientSecret: cfg.Imagery.ClientSecret,
		Timeout:      cfg.Imagery.Timeout,
		Selection:    cfg.Scene.Selection,
	})
	provider := imagery.NewCached(client, store, cfg.Scene.CacheTTL, cfg.Scene.Selection)
	provider.StartPurge(ctx, cfg.Scene.PurgeInterval)

	orchestrator := analysis.New(provider, analysis.Config{
		WindowDays: cfg.Analysis.WindowDays,
		Workers:    cfg.Analysis.Workers,
	})

	model := yield.NewModel()
	if cfg.Yield.ProfilesPath != "" {
		if err := model.LoadProfilesFile(cfg.Yield.ProfilesPath); err != nil {
			logging.Fatalf("Failed to load yield profiles: %v", err)
		}
		slog.Info("Yield profiles loaded", "path", cfg.Yield.ProfilesPath, "crops", len(model.Profiles()))
	}

	notifier := notify.New(cfg.Notify.WebhookURL, cfg.Notify.Timeout)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	api.RegisterDocs(router)

	handler := api.NewHandler(orchestrator, provider, model, notifier)
	handler.RegisterRoutes(router, api.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	// Drain in-flight requests before stopping what they depend on.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	cancel()
	provider.Stop()
	notifier.Close()

	slog.Info("shutdown complete")
}
