package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmook/storefront/internal/admin"
	"github.com/bookmook/storefront/internal/auth"
	"github.com/bookmook/storefront/internal/catalog"
	"github.com/bookmook/storefront/internal/config"
	apphttp "github.com/bookmook/storefront/internal/http"
	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/payment"
	"github.com/bookmook/storefront/internal/ratelimit"
	"github.com/bookmook/storefront/internal/rewards"
	"github.com/bookmook/storefront/internal/sheet"
	"github.com/bookmook/storefront/internal/user"
)

type emptyStore struct{}

func (emptyStore) UpsertPending(context.Context, user.PendingSignup) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (emptyStore) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (emptyStore) GetByID(context.Context, uuid.UUID) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (emptyStore) ConsumeVerifyToken(context.Context, string, time.Time) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (emptyStore) UpdateProfile(context.Context, uuid.UUID, user.ProfileUpdate) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (emptyStore) AddRewardPoints(context.Context, uuid.UUID, int64) (int64, error) {
	return 0, user.ErrNotFound
}
func (emptyStore) AddExchangeTickets(context.Context, uuid.UUID, int64) (int64, error) {
	return 0, user.ErrNotFound
}
func (emptyStore) FindMember(context.Context, user.MemberQuery) (*user.User, error) {
	return nil, user.ErrNotFound
}

type noMail struct{}

func (noMail) SendVerificationEmail(context.Context, string, string, string) error { return nil }

func newRouter(t *testing.T, env string) http.Handler {
	t.Helper()

	logger := logging.NewLogger(false)
	tokens, err := auth.NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	cookie := auth.CookieConfig{Name: "session_token", MaxAge: time.Hour}
	store := emptyStore{}

	rows := sheet.StaticSource{
		{"ISBN": "9788936434120", "제목": "소년이 온다", "저자": "한강", "정가": "15000", "판매가": "9000", "등급": "A"},
	}
	catalogService := catalog.NewService(rows, nil, logger)
	rewardService := rewards.NewService(store, logger)

	cfg := &config.Config{Server: config.ServerConfig{
		Env:            env,
		TrustedOrigins: []string{"http://localhost:3000"},
	}}

	return apphttp.NewRouter(cfg, apphttp.Handlers{
		Catalog:        catalog.NewHandler(catalogService, 0),
		Auth:           auth.NewHandler(auth.NewService(store, tokens, noMail{}, logger, time.Hour, time.Hour), nil, cookie, "http://localhost:3000"),
		AuthMiddleware: auth.NewMiddleware(tokens, cookie),
		Rewards:        rewards.NewHandler(rewardService),
		Payment:        payment.NewHandler(nil, rewardService),
		Admin:          admin.NewHandler(store, rewardService, "s3cret"),
		SearchLimiter:  ratelimit.NewPerIP(1, 1),
	}, logger)
}

func TestHealthAndSecurityHeaders(t *testing.T) {
	router := newRouter(t, "prod")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
}

func TestBooksRoute(t *testing.T) {
	router := newRouter(t, "prod")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
}

func TestSessionRoutesRequireLogin(t *testing.T) {
	router := newRouter(t, "prod")

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/user/profile"},
		{http.MethodPost, "/rewards/earn"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestMeIsOptional(t *testing.T) {
	router := newRouter(t, "prod")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
}

func TestAdminRoutesRequireSecret(t *testing.T) {
	router := newRouter(t, "prod")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/members/lookup", strings.NewReader(`{"query":"a@b.co"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/members/lookup", strings.NewReader(`{"query":"a@b.co"}`))
	req.Header.Set(admin.SecretHeader, "s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchIsThrottledPerIP(t *testing.T) {
	router := newRouter(t, "prod")

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/search?q=9788936", nil)
		req.RemoteAddr = "203.0.113.9:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestSwaggerOnlyInDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, "prod").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrivateRoutesAreNotCached(t *testing.T) {
	router := newRouter(t, "prod")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}
