// Package web is the browser-facing front end: the public viewer on every
// path and the admin console on one exact path. It renders HTML and talks to
// the data service only through internal/client.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/config"
	"github.com/keyxmakerx/worldatlas/internal/middleware"
)

// App holds the front end's Echo instance and handler.
type App struct {
	Config  *config.Config
	Echo    *echo.Echo
	Handler *Handler
}

// New creates the front end and configures global middleware and error
// handling. Routes are mounted by RegisterRoutes.
func New(cfg *config.Config, h *Handler) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	middleware.TrustedProxies(e, middleware.PrivateNetworks)

	a := &App{Config: cfg, Echo: e, Handler: h}
	e.Use(middleware.Recovery())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.SecurityHeaders())
	// CSRF parses form bodies, so the size cap must come first.
	e.Use(middleware.BodyLimit(maxFormBytes))
	e.Use(middleware.CSRF())
	e.HTTPErrorHandler = a.errorHandler
	return a
}

// errorHandler renders errors as HTML pages. Internal causes are logged,
// never shown.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "服务器内部错误"

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		message = pageMessage(code)
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if rerr := a.Handler.render(c, code, errorPage(code, message)); rerr != nil {
		slog.Error("rendering error page failed", slog.Any("error", rerr))
	}
}

// pageMessage is the zh-Hans text of the HTTP errors Echo raises itself.
func pageMessage(code int) string {
	switch code {
	case http.StatusNotFound:
		return "页面不存在"
	case http.StatusForbidden:
		return "请求已过期，请刷新页面后重试"
	case http.StatusMethodNotAllowed:
		return "不支持的请求方式"
	case http.StatusRequestEntityTooLarge:
		return "图片过大，请压缩后再上传"
	case http.StatusTooManyRequests:
		return "请求过于频繁，请稍后再试"
	default:
		return http.StatusText(code)
	}
}

// Start begins listening on the configured web port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Web.Port)
	slog.Info("web front end listening", slog.String("addr", addr))
	return a.Echo.Start(addr)
}
