package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bookmook/storefront/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const SessionContextKey ContextKey = "session"

// Middleware resolves session tokens for incoming requests.
type Middleware struct {
	tokenService TokenService
	cookie       CookieConfig
}

func NewMiddleware(tokenService TokenService, cookie CookieConfig) *Middleware {
	return &Middleware{tokenService: tokenService, cookie: cookie}
}

// LoadSession attaches the caller's session to the context when a valid
// token is present. Requests without one continue anonymously.
func (m *Middleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.resolve(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
	})
}

// RequireSession rejects requests without a valid session.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.resolve(r)
		if err != nil {
			switch {
			case errors.Is(err, errNoToken):
				httputil.RespondErrorWithCode(w, "login required", httputil.CodeMissingAuth, http.StatusUnauthorized)
			case errors.Is(err, ErrExpiredToken):
				httputil.RespondErrorWithCode(w, "session has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
			default:
				httputil.RespondErrorWithCode(w, "invalid session", httputil.CodeInvalidToken, http.StatusUnauthorized)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
	})
}

var errNoToken = errors.New("no session token")

// resolve reads the token from a Bearer header, falling back to the session
// cookie when the header is absent or not a usable Bearer value.
func (m *Middleware) resolve(r *http.Request) (*SessionClaims, error) {
	token := bearerToken(r.Header.Get("Authorization"))
	malformed := token == "" && r.Header.Get("Authorization") != ""

	if token == "" {
		cookieToken, err := GetSessionTokenFromCookie(r, m.cookie)
		if err != nil {
			if malformed {
				return nil, ErrInvalidToken
			}
			return nil, errNoToken
		}
		token = cookieToken
	}

	return m.tokenService.VerifyToken(token)
}

func bearerToken(header string) string {
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}

// WithSession stores claims in ctx.
func WithSession(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, SessionContextKey, claims)
}

// GetSessionFromContext returns the session loaded for this request.
func GetSessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(SessionContextKey).(*SessionClaims)
	return claims, ok && claims != nil
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := GetSessionFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
