package chronicles

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the timeline endpoints. The collection is served
// as "timeline" on the wire.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.GET("/timeline", h.List)

	admin.GET("/timeline", h.List)
	admin.POST("/timeline", h.Create)
	admin.PUT("/timeline/:id", h.Update)
	admin.DELETE("/timeline/:id", h.Delete)
}
