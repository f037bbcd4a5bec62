package access

import "context"

type surfaceContextKey string

const adminSurfaceKey surfaceContextKey = "admin_surface"

// WithAdminSurface marks the request as coming from the dashboard mount.
func WithAdminSurface(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminSurfaceKey, true)
}

func AdminSurfaceFromContext(ctx context.Context) bool {
	flag, ok := ctx.Value(adminSurfaceKey).(bool)
	return ok && flag
}
