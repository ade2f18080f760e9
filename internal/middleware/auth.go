package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vostok-trade/backend/internal/models"
	"github.com/vostok-trade/backend/internal/respond"
	"github.com/vostok-trade/backend/internal/store"
)

type ctxKey int

const userKey ctxKey = iota

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup loads a user without its password hash.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequireAuth verifies the bearer token and attaches the matching user to the
// request context. A valid token whose user no longer exists still passes;
// handlers must check UserFromContext.
func RequireAuth(tokens TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respond.Message(w, http.StatusUnauthorized, "Not authorized")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				respond.Message(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			oid, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				respond.Message(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := r.Context()
			user, err := users.GetByID(ctx, oid)
			switch {
			case errors.Is(err, store.ErrNotFound):
				slog.DebugContext(ctx, "token user not found", "user_id", userID)
			case err != nil:
				slog.ErrorContext(ctx, "auth user lookup", "user_id", userID, "error", err)
				respond.Message(w, http.StatusInternalServerError, "Internal server error")
				return
			default:
				ctx = WithUser(ctx, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose resolved user is not an admin. It must
// run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			respond.Message(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by RequireAuth, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
