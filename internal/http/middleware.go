package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// SessionResolver resolves a bearer token to its user.
type SessionResolver interface {
	Current(ctx context.Context, token string) (*domain.User, error)
}

// WithSession resolves the Authorization header, if present, and stores the
// user in the request context. An unknown or expired token passes through
// anonymous; a failing session store is a store outage, not an anonymous
// user, and aborts the request.
func WithSession(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token != "" {
				user, err := sessions.Current(r.Context(), token)
				switch {
				case err == nil:
					r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
				case errors.Is(err, session.ErrNoSession):
					// proceed anonymous
				default:
					log.Printf("session lookup error: %v", err)
					respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, please try again")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}

func userFromContext(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(userContextKey).(*domain.User); ok {
		return user
	}
	return nil
}

// userID returns the signed-in user's id, or uuid.Nil for anonymous requests.
func userID(ctx context.Context) uuid.UUID {
	if user := userFromContext(ctx); user != nil {
		return user.ID
	}
	return uuid.Nil
}

// requireUser responds 401 and returns nil when the request is anonymous.
func requireUser(w http.ResponseWriter, r *http.Request) *domain.User {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "auth_required", "sign in required")
		return nil
	}
	return user
}
