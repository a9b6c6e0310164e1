package media

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/middleware"
)

// RegisterRoutes mounts public image serving on e and the upload endpoints
// on admin. maxUploadSize is the decoded ceiling; the body limit allows
// for base64 expansion and the JSON envelope.
func RegisterRoutes(e *echo.Echo, admin *echo.Group, h *Handler, maxUploadSize int64) {
	e.GET("/media/:id", h.Serve)
	e.GET("/media/:id/thumb", h.ServeThumbnail)

	bodyLimit := middleware.BodyLimit(maxUploadSize*4/3 + 64*1024)
	uploadRateLimit := middleware.RateLimit(30, time.Minute)

	admin.POST("/images", h.Upload, uploadRateLimit, bodyLimit)
	admin.GET("/images/:entity/:id", h.History)
}
