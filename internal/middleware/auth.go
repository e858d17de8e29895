package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/auth"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ViewerKey is the context key for the authenticated viewer.
const ViewerKey contextKey = "viewer"

// ViewerFrom extracts the authenticated viewer from the context.
func ViewerFrom(ctx context.Context) (models.Viewer, bool) {
	v, ok := ctx.Value(ViewerKey).(models.Viewer)
	return v, ok && v.Valid()
}

// WithViewer returns a copy of ctx carrying v.
func WithViewer(ctx context.Context, v models.Viewer) context.Context {
	return context.WithValue(ctx, ViewerKey, v)
}

// RequireAuth returns a middleware that validates the bearer token and puts
// the viewer it names on the request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, auth.ErrMissingToken)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, auth.ErrInvalidToken)
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				slog.Warn("Token rejected", "path", r.URL.Path, "error", err)
				unauthorized(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), claims.Viewer())))
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
}
