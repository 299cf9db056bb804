package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookmook/storefront/internal/httputil"
)

const maxListLimit = 500

// Handler serves the public catalog endpoints.
type Handler struct {
	service     *Service
	searchLimit int
}

func NewHandler(service *Service, searchLimit int) *Handler {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &Handler{service: service, searchLimit: searchLimit}
}

// ItemsResponse wraps list results.
type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

// List handles the recent-books listing
// @Summary      List books
// @Description  Priced inventory records in sheet order
// @Tags         books
// @Produce      json
// @Param        limit query int false "Maximum number of records" default(100)
// @Success      200 {object} map[string]any
// @Failure      502 {object} httputil.ErrorResponse "Inventory source unavailable"
// @Router       /books [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Recent(r.Context(), parseLimit(r, DefaultRecentLimit))
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}
	httputil.RespondJSON(w, ItemsResponse[BookRecord]{Items: records}, http.StatusOK)
}

// Deals handles the discounted-books listing
// @Summary      List deals
// @Description  Records whose sell price is at least 25% below list price
// @Tags         books
// @Produce      json
// @Param        limit query int false "Maximum number of records" default(48)
// @Success      200 {object} map[string]any
// @Failure      502 {object} httputil.ErrorResponse "Inventory source unavailable"
// @Router       /books/deals [get]
func (h *Handler) Deals(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Deals(r.Context(), parseLimit(r, DefaultDealsLimit))
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}
	httputil.RespondJSON(w, ItemsResponse[BookRecord]{Items: records}, http.StatusOK)
}

// Get handles the book detail view
// @Summary      Book detail
// @Description  Assembled book with A/B/C grade variants
// @Tags         books
// @Produce      json
// @Param        isbn path string true "ISBN (hyphens allowed)"
// @Success      200 {object} Book
// @Failure      400 {object} httputil.ErrorResponse "Malformed ISBN"
// @Failure      404 {object} httputil.ErrorResponse "Book not found"
// @Failure      502 {object} httputil.ErrorResponse "Inventory source unavailable"
// @Router       /books/{isbn} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.Book(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}
	httputil.RespondJSON(w, book, http.StatusOK)
}

// Search handles inventory search
// @Summary      Search books
// @Description  Case- and whitespace-insensitive match on title, author, publisher or ISBN
// @Tags         books
// @Produce      json
// @Param        q query string true "Query"
// @Param        limit query int false "Maximum number of records" default(48)
// @Success      200 {object} map[string]any
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      502 {object} httputil.ErrorResponse "Inventory source unavailable"
// @Router       /search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), parseLimit(r, h.searchLimit))
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.RespondJSON(w, ItemsResponse[BookRecord]{Items: records}, http.StatusOK)
}

// Lines handles quote lines
// @Summary      Book lines
// @Description  First sentences and quotes taken from the inventory sheet
// @Tags         books
// @Produce      json
// @Param        limit query int false "Maximum number of lines" default(24)
// @Success      200 {object} map[string]any
// @Failure      502 {object} httputil.ErrorResponse "Inventory source unavailable"
// @Router       /book-lines [get]
func (h *Handler) Lines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.Lines(r.Context(), parseLimit(r, DefaultLinesLimit))
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}
	httputil.RespondJSON(w, ItemsResponse[BookLine]{Items: lines}, http.StatusOK)
}

// parseLimit reads ?limit=, falling back to def when absent or malformed,
// and keeps it within 1..maxListLimit.
func parseLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
