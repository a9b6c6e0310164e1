package locations

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// Handler processes HTTP requests for the locations plugin.
type Handler struct {
	svc LocationService
}

// NewHandler creates a new locations Handler.
func NewHandler(svc LocationService) *Handler {
	return &Handler{svc: svc}
}

// List returns every location.
// GET /api/locations, GET /api/admin/locations
func (h *Handler) List(c echo.Context) error {
	locs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locs)
}

// Create stores a new location and returns it with its ID.
// POST /api/admin/locations
func (h *Handler) Create(c echo.Context) error {
	var row world.LocationRow
	if err := c.Bind(&row); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	loc, err := h.svc.Create(c.Request().Context(), row)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, loc)
}

// Update replaces a location's fields.
// PUT /api/admin/locations/:id
func (h *Handler) Update(c echo.Context) error {
	var row world.LocationRow
	if err := c.Bind(&row); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	loc, err := h.svc.Update(c.Request().Context(), c.Param("id"), row)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loc)
}

// Delete removes a location.
// DELETE /api/admin/locations/:id
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
