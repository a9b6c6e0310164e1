package characters

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/plugins/auth"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// Handler processes HTTP requests for the characters plugin.
type Handler struct {
	svc CharacterService
}

// NewHandler creates a new characters Handler.
func NewHandler(svc CharacterService) *Handler {
	return &Handler{svc: svc}
}

// List returns every character. The public list hides characters still
// at the hidden discovery stage and omits role-play prompts.
// GET /api/characters, GET /api/admin/characters
func (h *Handler) List(c echo.Context) error {
	chars, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	if auth.IsAdmin(c) {
		return c.JSON(http.StatusOK, chars)
	}

	public := make([]world.Character, 0, len(chars))
	for _, ch := range chars {
		if ch.DiscoveryStage == world.StageHidden {
			continue
		}
		ch.RPPrompt = ""
		public = append(public, ch)
	}
	return c.JSON(http.StatusOK, public)
}

// Create stores a new character and returns it with its ID.
// POST /api/admin/characters
func (h *Handler) Create(c echo.Context) error {
	var row world.CharacterRow
	if err := c.Bind(&row); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	ch, err := h.svc.Create(c.Request().Context(), row)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ch)
}

// Update replaces a character's fields.
// PUT /api/admin/characters/:id
func (h *Handler) Update(c echo.Context) error {
	var row world.CharacterRow
	if err := c.Bind(&row); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	ch, err := h.svc.Update(c.Request().Context(), c.Param("id"), row)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ch)
}

// Delete removes a character.
// DELETE /api/admin/characters/:id
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
