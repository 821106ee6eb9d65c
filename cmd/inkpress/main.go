// Package main is the entry point for the Inkpress API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpress/internal/cache"
	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/handlers"
	"inkpress/internal/lifecycle"
	"inkpress/internal/middleware"
	"inkpress/internal/notify"
	"inkpress/internal/router"
	"inkpress/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the public feed cache. The app serves without
	// it, straight from PostgreSQL.
	var feedCache *cache.FeedCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable — feed caching disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		feedCache = cache.NewFeedCache(valkeyClient, cache.DefaultFeedTTL)
	}

	// Initialize data stores.
	postStore := store.NewPostStore(db)
	contactStore := store.NewContactStore(db)
	subscriberStore := store.NewSubscriberStore(db)
	notifLogStore := store.NewNotificationLogStore(db)
	userStore := store.NewUserStore(db)

	// Notification gateway (optional — transitions work without it).
	var gateway notify.Gateway
	if cfg.NotifyEndpoint != "" {
		gateway = notify.NewWebhookGateway(cfg.NotifyEndpoint, cfg.NotifyToken, notifLogStore)
		slog.Info("notification gateway configured", "endpoint", cfg.NotifyEndpoint)
	} else {
		gateway = notify.NullGateway{}
		slog.Warn("notification gateway not configured — deliveries disabled")
	}

	// The lifecycle service owns every post status change.
	lifecycleService := lifecycle.NewService(postStore, gateway)

	// Rate limiter for the unauthenticated write endpoints.
	contactLimiter := middleware.NewRateLimiter(cfg.PublicRateLimit, time.Minute)
	defer contactLimiter.Stop()

	// Create handler groups with their dependencies.
	authorHandlers := handlers.NewAuthor(postStore, lifecycleService, feedCache)
	moderationHandlers := handlers.NewModeration(postStore, contactStore, subscriberStore, notifLogStore, userStore, lifecycleService, gateway, feedCache)
	publicHandlers := handlers.NewPublic(postStore, contactStore, subscriberStore, feedCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(authorHandlers, moderationHandlers, publicHandlers, contactLimiter)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
