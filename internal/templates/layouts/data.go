// Package layouts holds the page shell shared by the public viewer and the
// admin console, and typed context helpers for the values the shell needs.
// Handlers store plain values here so the shell never imports workflow or
// client types.
//
// Data flow: Handler → Go Context → Base shell → templ.Component
package layouts

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey string

const (
	keyActivePath ctxKey = "layout_active_path"
	keyAdminPath  ctxKey = "layout_admin_path"
	keyFlashError ctxKey = "layout_flash_error"
)

func SetActivePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyActivePath, path)
}

func SetAdminPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyAdminPath, path)
}

// SetFlashError stores a one-off error shown above the page body.
func SetFlashError(ctx context.Context, msg string) context.Context {
	return context.WithValue(ctx, keyFlashError, msg)
}

func GetActivePath(ctx context.Context) string {
	v, _ := ctx.Value(keyActivePath).(string)
	return v
}

// GetAdminPath returns the console path, "/admin" when unset.
func GetAdminPath(ctx context.Context) string {
	if v, ok := ctx.Value(keyAdminPath).(string); ok && v != "" {
		return v
	}
	return "/admin"
}

func GetFlashError(ctx context.Context) string {
	v, _ := ctx.Value(keyFlashError).(string)
	return v
}

// IsConsole reports whether the page being rendered is the admin console.
func IsConsole(ctx context.Context) bool {
	return GetActivePath(ctx) == GetAdminPath(ctx)
}
