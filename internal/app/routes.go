package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/plugins/auth"
	"github.com/keyxmakerx/worldatlas/internal/plugins/characters"
	"github.com/keyxmakerx/worldatlas/internal/plugins/chat"
	"github.com/keyxmakerx/worldatlas/internal/plugins/chronicles"
	"github.com/keyxmakerx/worldatlas/internal/plugins/locations"
	"github.com/keyxmakerx/worldatlas/internal/plugins/media"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// RegisterRoutes wires every plugin and mounts its routes. This is the
// single place where routes are aggregated.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	e.GET("/healthz", a.healthz)

	verifier, err := auth.NewTokenVerifier(a.Config.Admin.Token, a.Config.Admin.TokenHash)
	if err != nil {
		return fmt.Errorf("configuring edit token: %w", err)
	}

	api := e.Group("/api")
	admin := api.Group("/admin", auth.RequireEditToken(verifier))

	// locations plugin
	locationSvc := locations.NewLocationService(locations.NewLocationRepository(a.DB))
	locations.RegisterRoutes(api, admin, locations.NewHandler(locationSvc))

	// characters plugin (checks location references)
	characterSvc := characters.NewCharacterService(characters.NewCharacterRepository(a.DB), locationSvc)
	characters.RegisterRoutes(api, admin, characters.NewHandler(characterSvc))

	// chronicles plugin
	chronicleSvc := chronicles.NewChronicleService(chronicles.NewChronicleRepository(a.DB))
	chronicles.RegisterRoutes(api, admin, chronicles.NewHandler(chronicleSvc))

	// media plugin
	targets := func(ctx context.Context, kind world.Kind, id string) (bool, error) {
		switch kind {
		case world.KindLocation:
			return locationSvc.Exists(ctx, id)
		case world.KindCharacter:
			return characterSvc.Exists(ctx, id)
		}
		return false, nil
	}
	mediaSvc := media.NewMediaService(media.NewMediaRepository(a.DB), targets,
		a.Config.Upload.MediaPath, a.Config.Upload.MaxSize)
	media.RegisterRoutes(e, admin, media.NewHandler(mediaSvc, a.Config.Upload.PublicBaseURL),
		a.Config.Upload.MaxSize)

	// chat plugin (503 until a backend is configured)
	var chatSvc chat.ChatService
	if a.Config.Chat.Enabled() {
		client := chat.NewOpenAIClient(a.Config.Chat.APIKey, a.Config.Chat.BaseURL)
		chatSvc = chat.NewChatService(client, a.Config.Chat.Model)
	} else {
		slog.Warn("CHAT_API_KEY not set; /api/chat will answer 503")
	}
	chat.RegisterRoutes(api, chat.NewHandler(chatSvc))

	return nil
}

// healthz reports whether the database is reachable.
func (a *App) healthz(c echo.Context) error {
	if a.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.PingContext(ctx); err != nil {
			slog.Warn("health check failed", slog.Any("error", err))
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "database unreachable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
