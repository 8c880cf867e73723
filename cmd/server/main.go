package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/api"
	"github.com/srniranjan/dopamine-menu/internal/auth"
	"github.com/srniranjan/dopamine-menu/internal/config"
	"github.com/srniranjan/dopamine-menu/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	loc, err := cfg.Timezone()
	if err != nil {
		logger.Fatalf("invalid timezone: %v", err)
	}

	if cfg.DBType == "memory" {
		if dir := filepath.Dir(cfg.DataFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logger.Fatalf("failed to create data directory: %v", err)
			}
		}
	}

	store, err := storage.New(cfg, loc, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	var provider auth.Provider
	if cfg.AuthMode == "local" {
		provider = auth.NewLocalProvider(cfg.DevToken, logger)
	} else {
		provider = auth.NewRemoteProvider(cfg.VerifyURL, cfg.JWTSecret, logger)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewApp(logger, store, loc), auth.Middleware(provider, cfg))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("server running on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
}
