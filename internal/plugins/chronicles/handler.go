package chronicles

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// Handler processes HTTP requests for the chronicles plugin.
type Handler struct {
	svc ChronicleService
}

// NewHandler creates a new chronicles Handler.
func NewHandler(svc ChronicleService) *Handler {
	return &Handler{svc: svc}
}

// List returns every timeline event.
// GET /api/timeline, GET /api/admin/timeline
func (h *Handler) List(c echo.Context) error {
	entries, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Create stores a new event.
// POST /api/admin/timeline
func (h *Handler) Create(c echo.Context) error {
	var row world.TimelineRow
	if err := c.Bind(&row); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	e, err := h.svc.Create(c.Request().Context(), row)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

// Update replaces an event's fields.
// PUT /api/admin/timeline/:id
func (h *Handler) Update(c echo.Context) error {
	var row world.TimelineRow
	if err := c.Bind(&row); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	e, err := h.svc.Update(c.Request().Context(), c.Param("id"), row)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

// Delete removes an event.
// DELETE /api/admin/timeline/:id
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
