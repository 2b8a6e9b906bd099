// Package middleware provides HTTP middlewares for session resolution and
// request logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/akarpov/newsline/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// AuthCookie is the cookie carrying the session token.
const AuthCookie = "auth"

// AuthHeader is the header alternative for non-browser clients.
const AuthHeader = "X-Auth-Token"

// SessionResolver maps a session token to its user. A nil user with a nil
// error means no active session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// WithSession resolves the caller's identity once per request, from the
// auth cookie or the X-Auth-Token header, and stores the user in the
// request context. Anonymous requests pass through with no user set;
// only a store failure aborts the request.
func WithSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := tokenFromRequest(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, err := resolver.Resolve(r.Context(), tok)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if u == nil {
				// Stale token: proceed anonymously.
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AuthCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(AuthHeader)
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext extracts the authenticated user from the request context.
// Returns nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}
