package catalog

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/bookmook/storefront/internal/sheet"
)

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/books", h.List)
	r.Get("/books/deals", h.Deals)
	r.Get("/books/{isbn}", h.Get)
	r.Get("/search", h.Search)
	r.Get("/book-lines", h.Lines)
	return r
}

func TestHandler_Routes(t *testing.T) {
	h := NewHandler(newTestService(sheet.StaticSource(inventory()), nil), 0)

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"list", "/books?limit=2", http.StatusOK, `"title":"소년이 온다"`},
		{"deals", "/books/deals", http.StatusOK, `"isbn":"9788936434120"`},
		{"detail", "/books/9788936434120", http.StatusOK, `"soldOut":false`},
		{"detail missing", "/books/123", http.StatusNotFound, `"code":"NOT_FOUND"`},
		{"search", "/search?q=%ED%8A%B8%EB%A0%8C%EB%93%9C", http.StatusOK, `"isbn":"9791190090018"`},
		{"search empty", "/search?q=", http.StatusOK, `"items":[]`},
		{"lines", "/book-lines", http.StatusOK, `"text":"그날 아침"`},
	}

	r := newTestRouter(h)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestHandler_UpstreamFailureIsGeneric(t *testing.T) {
	h := NewHandler(newTestService(&countingSource{err: errors.New("secret detail")}, nil), 0)

	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestParseLimit(t *testing.T) {
	req := func(q string) *http.Request { return httptest.NewRequest(http.MethodGet, "/x?"+q, nil) }

	assert.Equal(t, 24, parseLimit(req(""), 24))
	assert.Equal(t, 24, parseLimit(req("limit=abc"), 24))
	assert.Equal(t, 1, parseLimit(req("limit=0"), 24))
	assert.Equal(t, 7, parseLimit(req("limit=7"), 24))
	assert.Equal(t, maxListLimit, parseLimit(req("limit=99999"), 24))
}
