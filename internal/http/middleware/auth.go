package middleware

import (
	"context"
	"net/http"
	"strings"

	"chainmeet/backend/internal/auth"
	"chainmeet/backend/internal/identity"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	adminKey    contextKey = "is_admin"
)

// IdentityFromContext returns the authenticated chain identity, if any.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	val, ok := ctx.Value(identityKey).(identity.Identity)
	return val, ok
}

// AdminFromContext reports whether the session carries the admin flag.
func AdminFromContext(ctx context.Context) bool {
	val, ok := ctx.Value(adminKey).(bool)
	return ok && val
}

// AuthMiddleware requires a bearer session token and puts the identity it
// names on the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, "invalid Authorization", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseSessionToken(secret, parts[1])
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			id, err := claims.Identity()
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			ctx = context.WithValue(ctx, adminKey, claims.IsAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects sessions without the admin flag. It must sit inside
// AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !AdminFromContext(r.Context()) {
			http.Error(w, "admin required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
