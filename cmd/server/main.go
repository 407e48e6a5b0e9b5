package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mcoot/bluetrace-go/internal/api"
	"github.com/mcoot/bluetrace-go/internal/factory"
	"github.com/mcoot/bluetrace-go/internal/server"
	redisstorage "github.com/mcoot/bluetrace-go/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 3 {
		logger.Error("usage: btserver <port> <block duration seconds>")
		os.Exit(1)
	}
	port, err := strconv.Atoi(os.Args[1])
	if err != nil || port < 1 || port > 65535 {
		logger.Error("invalid port", slog.String("arg", os.Args[1]))
		os.Exit(1)
	}
	blockSeconds, err := strconv.Atoi(os.Args[2])
	if err != nil || blockSeconds < 1 {
		logger.Error("invalid block duration", slog.String("arg", os.Args[2]))
		os.Exit(1)
	}

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serverCfg := server.DefaultConfig()
	serverCfg.Port = port
	serverCfg.BlockDuration = time.Duration(blockSeconds) * time.Second

	srv := server.New(serverCfg, app.Storage, app.Blocks, app.TempIDs, app.Reconciler, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Optionally expose the ops API alongside the protocol listener
	var opsServer *api.Server
	if opsPort := os.Getenv("OPS_PORT"); opsPort != "" {
		p, err := strconv.Atoi(opsPort)
		if err != nil || p < 1 || p > 65535 {
			logger.Error("invalid OPS_PORT", slog.String("value", opsPort))
			os.Exit(1)
		}
		router := api.NewRouter(api.RouterConfig{
			Logger:     logger,
			Reconciler: app.Reconciler,
			Blocks:     app.Blocks,
		})
		opsCfg := api.DefaultServerConfig()
		opsCfg.Port = p
		opsServer = api.NewServer(router, opsCfg, logger)
		go func() {
			if err := opsServer.Start(); err != nil {
				logger.Error("ops server error", slog.String("error", err.Error()))
			}
		}()
	}

	// Start protocol server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if opsServer != nil {
			if err := opsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("ops shutdown error", slog.String("error", err.Error()))
			}
		}
		logger.Info("server stopped")
	}
}
