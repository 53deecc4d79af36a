package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/storefront-go/storefront/internal/user"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

// SessionFromContext returns the authenticated session placed there by the
// auth middleware.
func SessionFromContext(ctx context.Context) (*user.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey).(*user.Session)
	return s, ok
}

type AuthMiddleware struct {
	sessions *user.SessionStore
}

func NewAuthMiddleware(sessions *user.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Require resolves the bearer token to a session and rejects the request
// without one.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
			return
		}

		sess, err := m.sessions.Get(r.Context(), token)
		if err != nil {
			if errors.Is(err, user.ErrSessionNotFound) {
				respondWithError(w, http.StatusUnauthorized, "Session expired, please log in again")
				return
			}
			log.Error().Err(err).Msg("httpx: failed to resolve session")
			respondWithError(w, http.StatusInternalServerError, "Something went wrong, please try again")
			return
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches a session when a valid token is present but lets the
// request through either way. Public catalog routes use it so admins see
// unpublished items.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if sess, err := m.sessions.Get(r.Context(), token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin must be mounted after Require.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok || !sess.IsAdmin {
			respondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	// Legacy clients send the raw token in a "token" header.
	return r.Header.Get("token")
}
