package chat

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// Handler serves the archivist chat endpoint.
type Handler struct {
	svc ChatService // nil when no chat backend is configured
}

// NewHandler creates a chat Handler. A nil service makes every request
// answer 503.
func NewHandler(svc ChatService) *Handler {
	return &Handler{svc: svc}
}

// Ask answers one viewer question.
// POST /api/chat
func (h *Handler) Ask(c echo.Context) error {
	if h.svc == nil {
		return apperror.NewUnavailable("chat is not configured")
	}
	var req world.ChatRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	text, err := h.svc.Reply(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, world.ChatResponse{Text: text})
}
