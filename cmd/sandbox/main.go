package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"stockdeck/internal/cache"
	"stockdeck/internal/config"
	"stockdeck/internal/sandbox"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Info("starting stockdeck sandbox")

	cfg := config.MustLoad()

	if dir := filepath.Dir(cfg.Sandbox.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logrus.WithError(err).Fatal("failed to create data directory")
		}
	}

	store, err := sandbox.NewStore(cfg.Sandbox.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open store")
	}

	// Redis is optional; single-instance development runs on the memory cache.
	var tokenCache cache.Cache
	if cfg.Sandbox.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Sandbox.RedisAddr,
			Password: cfg.Sandbox.RedisPassword,
			DB:       cfg.Sandbox.RedisDB,
		})
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, falling back to memory cache")
		} else {
			tokenCache = redisCache
			logrus.Info("redis token cache initialized")
		}
	}
	if tokenCache == nil {
		tokenCache = cache.NewMemoryCache()
		logrus.Info("memory token cache initialized")
	}

	server := sandbox.NewServer(store, tokenCache, cfg.Sandbox.TokenTTL)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Sandbox.ShutdownTimeout)
	if err := server.Seed(ctx, cfg.Sandbox.SeedAdminPassword); err != nil {
		cancel()
		logrus.WithError(err).Fatal("failed to seed database")
	}
	cancel()

	srv := &http.Server{
		Addr:         cfg.Sandbox.Address(),
		Handler:      server.Router,
		ReadTimeout:  cfg.Sandbox.ReadTimeout,
		WriteTimeout: cfg.Sandbox.WriteTimeout,
	}

	go func() {
		logrus.WithField("addr", cfg.Sandbox.Address()).Info("sandbox listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down sandbox")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Sandbox.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("server shutdown error")
	}
	server.Shutdown()
	_ = tokenCache.Close()

	logrus.Info("sandbox stopped")
}
