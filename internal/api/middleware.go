package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/leca/dt-petfriends/internal/database"
	"github.com/leca/dt-petfriends/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// AuthKeyHeader carries the key issued by GET /api/key.
const AuthKeyHeader = "auth_key"

// KeyResolver looks up the owner of an auth key.
type KeyResolver interface {
	GetUserByAPIKey(key string) (*model.User, error)
}

// AuthKeyMiddleware resolves the auth_key header to a user and stores it in
// the request context. Missing or unknown keys get a 403 page.
func AuthKeyMiddleware(keys KeyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(AuthKeyHeader)
			if key == "" {
				Forbidden(w, "Please provide 'auth_key' Header")
				return
			}

			user, err := keys.GetUserByAPIKey(key)
			if errors.Is(err, database.ErrNotFound) {
				Forbidden(w, "Please provide correct 'auth_key' Header")
				return
			}
			if err != nil {
				slog.Error("resolve auth key", "error", err)
				InternalError(w, "failed to check auth key")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by AuthKeyMiddleware, or nil.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}
