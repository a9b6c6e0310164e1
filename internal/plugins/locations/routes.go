package locations

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the public list on api and the CRUD endpoints on
// admin. The admin group must already carry the edit-token middleware.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.GET("/locations", h.List)

	admin.GET("/locations", h.List)
	admin.POST("/locations", h.Create)
	admin.PUT("/locations/:id", h.Update)
	admin.DELETE("/locations/:id", h.Delete)
}
