// Package main is the entry point for the world atlas web front end. It
// serves the public viewer and the admin console and reaches the data
// service over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keyxmakerx/worldatlas/internal/client"
	"github.com/keyxmakerx/worldatlas/internal/config"
	"github.com/keyxmakerx/worldatlas/internal/database"
	"github.com/keyxmakerx/worldatlas/internal/web"
)

func main() {
	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	setupLogging(cfg)

	slog.Info("starting web front end",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Web.Port),
		slog.String("data_service", cfg.Web.DataServiceURL),
		slog.String("admin_path", cfg.Web.AdminPath),
	)

	// --- Connect to Redis ---
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("connected to Redis")

	// --- Clients ---
	logger := slog.Default()
	data := client.NewDataServiceClient(cfg.Web.DataServiceURL, cfg.Web.ClientTimeout, logger)
	chat := client.NewChatClient(cfg.Web.ChatURL, cfg.Web.ClientTimeout, logger)

	// --- Create Application ---
	handler := web.NewHandler(data, chat, web.NewConsoleRegistry(data, rdb), cfg.Web.AdminPath)
	application := web.New(cfg, handler)
	application.RegisterRoutes()

	// --- Graceful Shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	// --- Start Server ---
	if err := application.Start(); err != nil {
		slog.Info("server stopped", slog.Any("reason", err))
	}
}

// setupLogging mirrors the data service: text in development, JSON in
// production.
func setupLogging(cfg *config.Config) {
	var handler slog.Handler

	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	slog.SetDefault(slog.New(handler))
}
