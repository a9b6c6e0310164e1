package chat

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/middleware"
)

// RegisterRoutes mounts the chat endpoint on the public API group. Each
// call costs a model completion, so it is rate limited per IP.
func RegisterRoutes(api *echo.Group, h *Handler) {
	api.POST("/chat", h.Ask, middleware.RateLimit(20, time.Minute), middleware.BodyLimit(64*1024))
}
