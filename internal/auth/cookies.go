package auth

import (
	"net/http"
	"time"
)

// DefaultSessionCookie is the cookie that carries the session token.
const DefaultSessionCookie = "session_token"

// CookieConfig controls how the session cookie is written.
type CookieConfig struct {
	Name   string
	Secure bool // true in production
	MaxAge time.Duration
}

// SetSessionCookie stores token in an http-only cookie scoped to the
// whole site.
func SetSessionCookie(w http.ResponseWriter, cfg CookieConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(cfg),
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Expires:  time.Now().Add(cfg.MaxAge),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie immediately. The token
// itself stays valid until its own expiry.
func ClearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(cfg),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSessionTokenFromCookie returns the session token, or
// http.ErrNoCookie when absent or blank.
func GetSessionTokenFromCookie(r *http.Request, cfg CookieConfig) (string, error) {
	c, err := r.Cookie(cookieName(cfg))
	if err != nil {
		return "", err
	}
	if c.Value == "" {
		return "", http.ErrNoCookie
	}
	return c.Value, nil
}

func cookieName(cfg CookieConfig) string {
	if cfg.Name == "" {
		return DefaultSessionCookie
	}
	return cfg.Name
}
