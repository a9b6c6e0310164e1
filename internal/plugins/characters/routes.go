package characters

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the public list on api and the CRUD endpoints on
// admin. The admin group must already carry the edit-token middleware.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.GET("/characters", h.List)

	admin.GET("/characters", h.List)
	admin.POST("/characters", h.Create)
	admin.PUT("/characters/:id", h.Update)
	admin.DELETE("/characters/:id", h.Delete)
}
