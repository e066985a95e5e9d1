package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfagundes/huddle/internal/auth"
	"github.com/dfagundes/huddle/internal/config"
	"github.com/dfagundes/huddle/internal/handler"
	"github.com/dfagundes/huddle/internal/model"
	"github.com/dfagundes/huddle/internal/notify"
	"github.com/dfagundes/huddle/internal/refresher"
	"github.com/dfagundes/huddle/internal/service"
	"github.com/dfagundes/huddle/internal/zoom"
	"github.com/dfagundes/huddle/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	config.InitLogger(cfg)

	slog.Info("Starting Huddle Meeting Broker", "version", version, "accounts", len(cfg.Accounts))

	// Build the account registry; its order is the booking priority order
	registry := model.NewRegistry(cfg.Accounts)

	// Initialize token cache and provider client
	tokenCache := auth.NewTokenCache(registry, cfg.ZoomTokenURL, cfg.DefaultAPITimeout)
	providerClient := zoom.NewClient(cfg.ZoomAPIBaseURL, cfg.DefaultAPITimeout)

	// Initialize notification dispatcher
	var notifier service.Notifier = notify.NopNotifier{}
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewDispatcher(cfg.NotifyWebhookURL, cfg.DefaultNotifyTimeout, cfg.NotifyMaxAttempts)
	} else {
		slog.Info("No notification webhook configured, notifications disabled")
	}

	// Initialize services
	aggregator := service.NewAggregator(registry, tokenCache, providerClient)
	planner := service.NewPlanner(registry, tokenCache, providerClient, notifier, cfg.DefaultNotifyTimeout)
	meetings := service.NewMeetings(registry, tokenCache, providerClient, notifier, cfg.DefaultNotifyTimeout)

	// Start the background token refresher
	tokenRefresher := refresher.New(tokenCache, cfg.RefresherEnabled, cfg.RefresherSchedule)
	if err := tokenRefresher.Start(context.Background()); err != nil {
		slog.Error("Failed to start token refresher", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	meetingHandler := handler.NewMeetingHandler(aggregator, planner, meetings)
	healthHandler := handler.NewHealthHandler(registry, version)

	// Create CORS config
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}

	// Create router
	router := handler.NewRouter(meetingHandler, healthHandler, corsConfig)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the refresher first so no new provider calls start
	tokenRefresher.Stop(shutdownCtx)

	// Shutdown HTTP server
	slog.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Huddle Meeting Broker stopped")
}
