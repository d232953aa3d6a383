package sandbox

import (
	"context"
	"net/http"
	"strings"

	"stockdeck/internal/model"
	"stockdeck/pkg/apierror"
	"stockdeck/pkg/response"
)

type contextKey string

// userKey holds the authenticated *model.User in the request context.
const userKey contextKey = "auth_user"

// AuthMiddleware validates the bearer token and loads the owning account into
// the request context. Token service and store are passed via closure.
func AuthMiddleware(tokens *TokenService, store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimPrefix(auth, "Bearer ")
			if token == "" || token == auth {
				response.Error(w, apierror.Unauthorized("authentication required"))
				return
			}

			userID, err := tokens.Validate(r.Context(), token)
			if err != nil {
				response.Error(w, apierror.Unauthorized("invalid or expired token"))
				return
			}

			user, _, err := store.GetUserByID(r.Context(), userID)
			if err != nil {
				response.Error(w, apierror.Unauthorized("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ManagerOnly rejects requests from accounts without the manager role.
func ManagerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !UserFromContext(r.Context()).IsManager() {
			response.Error(w, apierror.Forbidden("manager role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *model.User {
	if user, ok := ctx.Value(userKey).(*model.User); ok {
		return user
	}
	return nil
}
