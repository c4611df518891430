package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/free4fun/carbon-codex/config"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/routes"
	"github.com/free4fun/carbon-codex/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.Env)
	log := logger.Get()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("upload store init failed")
	}

	// Setup router
	router := routes.Setup(cfg, db, store)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.StorageS3 {
		return storage.NewS3Store(cfg.S3)
	}
	return storage.NewLocalStore(cfg.UploadsDir, cfg.UploadsBase)
}
