package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"go.uber.org/zap"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// Middleware guards /api routes behind the session cookie.
type Middleware struct {
	Users  repository.UserRepositoryInterface
	Secret string
	Logger *zap.Logger
}

// RequireAuth verifies the session cookie, loads the user, and stores it
// in the request context. Failures get a 401 JSON body.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			m.unauthorized(w, "No session token found")
			return
		}

		claims, err := VerifySessionToken(m.Secret, cookie.Value)
		if err != nil {
			m.unauthorized(w, "Invalid or expired token")
			return
		}

		user, err := m.Users.GetByGoogleID(claims.Subject)
		if err != nil {
			m.Logger.Error("failed to load session user", zap.Error(err))
			m.unauthorized(w, "User not found")
			return
		}
		if user == nil {
			m.unauthorized(w, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "Authentication required",
		"message": message,
	})
}

// UserFromContext returns the authenticated user stored by RequireAuth.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}
