package http

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

type contextKey struct{}

var userKey contextKey

// UserFromContext returns the authenticated account stored by the auth
// middleware, if any.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}

// publicPaths are reachable without a bearer token. The webhook authenticates
// with its own signature; docs and health have nothing to protect.
var publicPaths = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/api/payments/webhook",
	"/api/health",
	"/docs",
	"/openapi",
	"/schemas",
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") || strings.HasPrefix(path, p+".") {
			return true
		}
	}
	return false
}

// NewAuthMiddleware returns a Huma middleware that requires a valid bearer
// token on every route outside the public list and stores the resolved
// account in the request context.
func NewAuthMiddleware(api huma.API, auth *app.AuthService) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if isPublicPath(ctx.URL().Path) {
			next(ctx)
			return
		}

		header := ctx.Header("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			_ = huma.WriteErr(api, ctx, 401, "authentication required")
			return
		}

		user, err := auth.Verify(ctx.Context(), token)
		if err != nil {
			_ = huma.WriteErr(api, ctx, 401, "invalid or expired token")
			return
		}

		next(huma.WithValue(ctx, userKey, user))
	}
}
