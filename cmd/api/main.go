package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/bookmook/storefront/docs" // Swagger docs
	"github.com/bookmook/storefront/internal/admin"
	"github.com/bookmook/storefront/internal/auth"
	"github.com/bookmook/storefront/internal/catalog"
	"github.com/bookmook/storefront/internal/config"
	"github.com/bookmook/storefront/internal/database"
	"github.com/bookmook/storefront/internal/email"
	httpServer "github.com/bookmook/storefront/internal/http"
	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/payment"
	"github.com/bookmook/storefront/internal/ratelimit"
	"github.com/bookmook/storefront/internal/rewards"
	"github.com/bookmook/storefront/internal/sheet"
	"github.com/bookmook/storefront/internal/telemetry"
	"github.com/bookmook/storefront/internal/user"
)

// @title           BookMook Storefront API
// @version         1.0
// @description     Secondhand bookstore catalog, member accounts, rewards and payment confirmation.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

// @securityDefinitions.apikey AdminSecret
// @in header
// @name X-Admin-Secret

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	userRepo := user.NewRepository(db)
	emailService := email.NewService(cfg.Email)

	authService := auth.NewService(
		userRepo,
		tokenService,
		emailService,
		logger,
		cfg.Auth.SessionDuration,
		cfg.Auth.VerifyTokenTTL,
	)
	cookie := auth.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: !cfg.Server.IsDevelopment(),
		MaxAge: authService.SessionDuration(),
	}

	catalogService := catalog.NewService(
		newInventorySource(cfg.Catalog),
		catalog.NewRedisRowCache(redisClient, cfg.Catalog.CacheTTL),
		logger,
	)
	rewardService := rewards.NewService(userRepo, logger)

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Catalog:        catalog.NewHandler(catalogService, cfg.Catalog.SearchLimit),
		Auth:           auth.NewHandler(authService, ratelimit.NewLimiter(redisClient), cookie, cfg.Email.SiteURL),
		AuthMiddleware: auth.NewMiddleware(tokenService, cookie),
		Rewards:        rewards.NewHandler(rewardService),
		Payment:        payment.NewHandler(payment.NewClient(cfg.Payment), rewardService),
		Admin:          admin.NewHandler(userRepo, rewardService, cfg.Admin.Secret),
		SearchLimiter:  ratelimit.NewPerIP(cfg.Catalog.SearchRPS, cfg.Catalog.SearchBurst),
	}, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("failed to flush traces", "error", err.Error())
		}
	}

	return nil
}

func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	if cfg.TokenFormat == config.TokenFormatJWT {
		return auth.NewJWTService(cfg.JWTSecret)
	}
	return auth.NewPasetoService(cfg.PasetoKey)
}

// newInventorySource prefers the published sheet and falls back to a local
// workbook.
func newInventorySource(cfg config.CatalogConfig) sheet.Source {
	if cfg.CSVURL != "" {
		return sheet.NewHTTPSource(cfg.CSVURL, cfg.FetchTimeout)
	}
	return sheet.NewXLSXSource(cfg.XLSXPath, cfg.XLSXSheet)
}

func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
