// internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mkanyali/assetcomply-backend/internal/auth"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticate validates the Bearer token and stores the identity in the
// request context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				writeAuthError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := auth.ParseToken(secret, tokenString)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			user := &model.User{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user, or nil outside the
// Authenticate middleware.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
