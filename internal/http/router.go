package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/bookmook/storefront/internal/admin"
	"github.com/bookmook/storefront/internal/auth"
	"github.com/bookmook/storefront/internal/catalog"
	"github.com/bookmook/storefront/internal/config"
	"github.com/bookmook/storefront/internal/httputil"
	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/payment"
	"github.com/bookmook/storefront/internal/ratelimit"
	"github.com/bookmook/storefront/internal/rewards"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Catalog        *catalog.Handler
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware
	Rewards        *rewards.Handler
	Payment        *payment.Handler
	Admin          *admin.Handler
	SearchLimiter  *ratelimit.PerIP
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", admin.SecretHeader},
			ExposedHeaders:   []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI is only mounted in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.Catalog.List)
		r.Get("/deals", h.Catalog.Deals)
		r.Get("/{isbn}", h.Catalog.Get)
	})
	r.Get("/book-lines", h.Catalog.Lines)

	r.Group(func(r chi.Router) {
		if h.SearchLimiter != nil {
			r.Use(h.SearchLimiter.Middleware)
		}
		r.Get("/search", h.Catalog.Search)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Get("/verify-email", h.Auth.VerifyEmail)
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.With(h.AuthMiddleware.LoadSession).Get("/me", h.Auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware.RequireSession)
		r.Put("/user/profile", h.Auth.UpdateProfile)
		r.Post("/rewards/earn", h.Rewards.Earn)
	})

	r.With(h.AuthMiddleware.LoadSession).Post("/payments/confirm", h.Payment.Confirm)

	r.Route("/admin/members", func(r chi.Router) {
		r.Use(h.Admin.RequireSecret)
		r.Post("/lookup", h.Admin.Lookup)
		r.Post("/tickets", h.Admin.GrantTickets)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
