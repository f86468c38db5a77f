package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/curator"
	"github.com/nguyentantai21042004/storycut/internal/director"
	"github.com/nguyentantai21042004/storycut/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "director: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Server.RedisAddr,
		Password: cfg.Server.RedisPassword,
		DB:       cfg.Server.RedisDB,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis at %s: %w", cfg.Server.RedisAddr, err)
	}

	if cfg.Director.Token == "" {
		log.Warn(ctx, "DIRECTOR_TOKEN is not set, /v1 is open to anyone")
	}

	gin.SetMode(gin.ReleaseMode)
	reasoner := curator.NewGemini(cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
	srv := director.New(reasoner, director.NewRedisQuota(rdb), cfg.Director.Token, cfg.Server.DailyLimit, log)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info(ctx, "Director listening on %s (model %s, %d keys, daily limit %d)",
			cfg.Server.Addr, cfg.Gemini.Model, len(cfg.Gemini.APIKeys), cfg.Server.DailyLimit)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info(context.Background(), "Shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(shutdownCtx, "Director stopped")
	return nil
}
