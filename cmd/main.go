/*
Package main is the entry point for the relayhub server.

It loads configuration, initializes the global logging system, connects the
Redis-backed code/history store with its in-memory fallback, sets up blob
storage and the HTTP/WebSocket surface, and handles operating system
interrupt signals (SIGINT, SIGTERM) for graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"relayhub/internal/app/blob"
	"relayhub/internal/app/hub"
	"relayhub/internal/app/store"
	"relayhub/internal/configs"
	"relayhub/internal/handler"
	"relayhub/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("redis_addr", cfg.RedisAddr).
		Int("max_connections_per_room", cfg.MaxConnectionsPerRoom).
		Int("max_connections_per_user", cfg.MaxConnectionsPerUser).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Durable code/history store with in-process fallback. The process runs
	// in degraded mode if Redis is unreachable, so startup does not require
	// a successful ping.
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	defer redisClient.Close()

	codeStore := store.NewFallback(
		store.NewRedisStore(redisClient, cfg.MessageHistoryLength),
		store.NewMemoryStore(cfg.MessageHistoryLength),
		*logx.Logger(),
	)

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	if codeStore.HealthCheck(pingCtx) {
		logx.Info("Redis connection established")
	} else {
		logx.Warn("Redis not reachable at startup. Codes and history served from in-memory fallback until it recovers.")
	}
	cancelPing()

	// Blob storage for shared files
	blobService, err := blob.NewService(blob.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize blob storage")
	}

	// Room & connection manager
	manager := hub.NewManager(cfg, codeStore, *logx.Logger())

	deps := &handler.AppDeps{
		Manager: manager,
		Config:  cfg,
		Store:   codeStore,
		Blob:    blobService,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("relayhub server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	manager.Shutdown()

	logx.Info("Server gracefully stopped.")
}
