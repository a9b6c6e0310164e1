package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
)

// contextKeyAdmin marks requests that presented a valid edit token.
const contextKeyAdmin = "auth_admin"

// RequireEditToken returns middleware that rejects requests without a valid
// "Authorization: Bearer <token>" header. Failures are logged with the
// client IP so brute-force attempts show up in the request log.
func RequireEditToken(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err := verifier.Verify(token); err != nil {
				slog.Warn("edit token rejected",
					slog.String("ip", c.RealIP()),
					slog.String("path", c.Request().URL.Path),
				)
				return err
			}
			c.Set(contextKeyAdmin, true)
			return next(c)
		}
	}
}

// IsAdmin reports whether the request passed RequireEditToken.
func IsAdmin(c echo.Context) bool {
	ok, _ := c.Get(contextKeyAdmin).(bool)
	return ok
}

// bearerToken extracts the credential from an Authorization header value.
// The scheme is matched case-insensitively.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
