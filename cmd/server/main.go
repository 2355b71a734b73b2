package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mlm20/terra-health-archetypes/internal"
	"github.com/mlm20/terra-health-archetypes/internal/api"
	"github.com/mlm20/terra-health-archetypes/internal/archetype"
	"github.com/mlm20/terra-health-archetypes/internal/config"
	"github.com/mlm20/terra-health-archetypes/internal/session"
	"github.com/mlm20/terra-health-archetypes/internal/terra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := session.NewRegistry(cfg.SessionMaxAge, logger)
	go registry.Sweep(ctx, cfg.SessionSweepInterval)

	terraClient := terra.NewClient(cfg.TerraDevID, cfg.TerraAPIKey, cfg.TerraAPIURL, cfg.FrontendURL, logger)
	generator := archetype.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, logger)

	app := api.NewApp(logger, registry, terraClient, generator)
	router := api.NewRouter(app, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
