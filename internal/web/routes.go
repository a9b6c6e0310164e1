package web

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/middleware"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// maxFormBytes leaves room for the other form fields and for files that
// the workflow must itself reject as too large.
const maxFormBytes = 4 * world.MaxImageBytes

// RegisterRoutes mounts the console on the exact admin path and the viewer
// on every other GET path.
func (a *App) RegisterRoutes() {
	e := a.Echo
	h := a.Handler
	admin := a.Config.Web.AdminPath

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET(admin, h.Console)
	e.POST(admin+"/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.POST(admin+"/logout", h.Logout)
	e.POST(admin+"/tab", h.verified(switchTab))
	e.POST(admin+"/new", h.verified(newRecord))
	e.POST(admin+"/select", h.verified(selectRecord))
	e.POST(admin+"/save", h.verified(saveRecord))
	e.POST(admin+"/delete", h.verified(deleteRecord))
	e.POST(admin+"/image", h.verified(attachImage))

	e.POST("/chat", h.Chat, middleware.RateLimit(20, time.Minute), middleware.BodyLimit(64*1024))
	e.GET("/*", h.Viewer)
}
