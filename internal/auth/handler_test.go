package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmook/storefront/internal/httputil"
)

type stubLimiter struct {
	exceeded bool
	recorded []string
}

func (l *stubLimiter) CheckIPRateLimitWithPurpose(_ context.Context, _, _ string) (bool, error) {
	return l.exceeded, nil
}

func (l *stubLimiter) RecordIPRequestWithPurpose(_ context.Context, ip, purpose string) error {
	l.recorded = append(l.recorded, purpose+":"+ip)
	return nil
}

func newTestRouter(env *testEnv, limiter RateLimiter) http.Handler {
	cookie := CookieConfig{Name: DefaultSessionCookie, MaxAge: 7 * 24 * time.Hour}
	h := NewHandler(env.service, limiter, cookie, "https://bookmook.test")
	mw := NewMiddleware(env.tokens, cookie)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Get("/verify-email", h.VerifyEmail)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(mw.LoadSession).Get("/me", h.Me)
	})
	r.With(mw.RequireSession).Put("/user/profile", h.UpdateProfile)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4000"
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultSessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandler_SignupVerifyLoginFlow(t *testing.T) {
	env := newTestEnv()
	limiter := &stubLimiter{}
	router := newTestRouter(env, limiter)

	rec := doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"reader@example.com","password":"secret123","confirmPassword":"secret123","name":"김독서"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"register:192.0.2.10"}, limiter.recorded)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"reader@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, httputil.CodeEmailNotVerified, decodeError(t, rec).Code)

	rec = doJSON(t, router, http.MethodGet, "/auth/verify-email?token="+env.mailer.last().token, "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://bookmook.test/verify-result?success=true", rec.Header().Get("Location"))

	rec = doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"Reader@Example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)

	rec = doJSON(t, router, http.MethodGet, "/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var me MeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	require.NotNil(t, me.User)
	assert.Equal(t, "reader@example.com", me.User.Email)
	assert.True(t, me.User.IsVerified)

	rec = doJSON(t, router, http.MethodPost, "/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestHandler_VerifyEmailFailureRedirects(t *testing.T) {
	router := newTestRouter(newTestEnv(), &stubLimiter{})

	rec := doJSON(t, router, http.MethodGet, "/auth/verify-email?token=nope", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://bookmook.test/verify-result?success=false", rec.Header().Get("Location"))
}

func TestHandler_RegisterErrors(t *testing.T) {
	env := newTestEnv()
	env.store.seedVerified("taken@example.com", "secret123")
	router := newTestRouter(env, &stubLimiter{})

	rec := doJSON(t, router, http.MethodPost, "/auth/register", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidRequestBody, decodeError(t, rec).Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"new@example.com","password":"secret123","confirmPassword":"nope12345","name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, httputil.CodeValidationFailed, body.Code)
	assert.Equal(t, "confirmPassword", body.Field)

	rec = doJSON(t, router, http.MethodPost, "/auth/register",
		`{"email":"taken@example.com","password":"secret123","confirmPassword":"secret123","name":"A"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, httputil.CodeAlreadyRegistered, decodeError(t, rec).Code)
}

func TestHandler_RateLimited(t *testing.T) {
	router := newTestRouter(newTestEnv(), &stubLimiter{exceeded: true})

	rec := doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"reader@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, httputil.CodeTooManyRequests, decodeError(t, rec).Code)
}

func TestHandler_LoginWrongPassword(t *testing.T) {
	env := newTestEnv()
	env.store.seedVerified("reader@example.com", "secret123")
	router := newTestRouter(env, nil)

	rec := doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"reader@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidCredentials, decodeError(t, rec).Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandler_MeAnonymous(t *testing.T) {
	router := newTestRouter(newTestEnv(), nil)

	for _, cookie := range []*http.Cookie{nil, {Name: DefaultSessionCookie, Value: "garbage"}} {
		var rec *httptest.ResponseRecorder
		if cookie == nil {
			rec = doJSON(t, router, http.MethodGet, "/auth/me", "")
		} else {
			rec = doJSON(t, router, http.MethodGet, "/auth/me", "", cookie)
		}
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user":null}`, rec.Body.String())
	}
}

func TestHandler_UpdateProfile(t *testing.T) {
	env := newTestEnv()
	seeded := env.store.seedVerified("reader@example.com", "secret123")
	router := newTestRouter(env, nil)

	rec := doJSON(t, router, http.MethodPut, "/user/profile", `{"nickname":"책벌레"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeMissingAuth, decodeError(t, rec).Code)

	token, err := env.tokens.CreateToken(SessionClaims{UserID: seeded.ID, Email: seeded.Email}, time.Hour)
	require.NoError(t, err)
	cookie := &http.Cookie{Name: DefaultSessionCookie, Value: token}

	rec = doJSON(t, router, http.MethodPut, "/user/profile", `{"nickname":"책벌레","phone":"010-1111-2222"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProfileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "책벌레", resp.User.Nickname)
	assert.Equal(t, "01011112222", resp.User.Phone)

	env.now = env.now.Add(2 * time.Hour)
	rec = doJSON(t, router, http.MethodPut, "/user/profile", `{"nickname":"다른이름"}`, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeTokenExpired, decodeError(t, rec).Code)
}

func TestMiddleware_BearerHeader(t *testing.T) {
	env := newTestEnv()
	seeded := env.store.seedVerified("reader@example.com", "secret123")
	router := newTestRouter(env, nil)

	token, err := env.tokens.CreateToken(SessionClaims{UserID: seeded.ID, Email: seeded.Email}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reader@example.com")

	req = httptest.NewRequest(http.MethodPut, "/user/profile", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Token "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidToken, decodeError(t, rec).Code)
}

func TestMiddleware_UnusableHeaderFallsBackToCookie(t *testing.T) {
	env := newTestEnv()
	seeded := env.store.seedVerified("reader@example.com", "secret123")
	router := newTestRouter(env, nil)

	token, err := env.tokens.CreateToken(SessionClaims{UserID: seeded.ID, Email: seeded.Email}, time.Hour)
	require.NoError(t, err)
	cookie := &http.Cookie{Name: DefaultSessionCookie, Value: token}

	for _, header := range []string{"Basic dXNlcjpwdw==", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", header)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, header)
		assert.Contains(t, rec.Body.String(), "reader@example.com", header)

		req = httptest.NewRequest(http.MethodPut, "/user/profile", strings.NewReader(`{}`))
		req.Header.Set("Authorization", header)
		req.AddCookie(cookie)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, header)
	}
}
