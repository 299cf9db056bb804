package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token formats accepted in AUTH_TOKEN_FORMAT.
const (
	TokenFormatPaseto = "paseto"
	TokenFormatJWT    = "jwt"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Email     EmailConfig
	Catalog   CatalogConfig
	Payment   PaymentConfig
	Admin     AdminConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	TokenFormat string
	// PASETO symmetric key (must be 32 bytes for v4.local)
	PasetoKey       []byte
	JWTSecret       []byte
	SessionDuration time.Duration
	VerifyTokenTTL  time.Duration
	CookieName      string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
	SiteURL      string // storefront origin, target of the post-verification redirect
	VerifyURL    string // public API origin used in verification links
	SendTimeout  time.Duration
}

type CatalogConfig struct {
	CSVURL       string
	XLSXPath     string
	XLSXSheet    string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	SearchLimit  int
	SearchRPS    float64
	SearchBurst  int
}

type PaymentConfig struct {
	TossSecretKey string
	ConfirmURL    string
	Timeout       time.Duration
}

type AdminConfig struct {
	Secret string
}

type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables, falling back to a
// .env file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "bookmook"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenFormat:     strings.ToLower(getEnv("AUTH_TOKEN_FORMAT", TokenFormatPaseto)),
			PasetoKey:       []byte(getEnv("PASETO_KEY", "")),
			JWTSecret:       []byte(getEnv("JWT_SECRET", "")),
			SessionDuration: getDurationEnv("SESSION_DURATION", 7*24*time.Hour),
			VerifyTokenTTL:  getDurationEnv("VERIFY_TOKEN_TTL", 24*time.Hour),
			CookieName:      getEnv("SESSION_COOKIE_NAME", "session_token"),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", ""),
			FromAddress:  getEnv("MAIL_FROM", getEnv("SMTP_USER", "")),
			SiteURL:      strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
			SendTimeout:  getDurationEnv("SMTP_TIMEOUT", 10*time.Second),
		},
		Catalog: CatalogConfig{
			CSVURL:       getEnv("INVENTORY_CSV_URL", ""),
			XLSXPath:     getEnv("INVENTORY_XLSX_PATH", ""),
			XLSXSheet:    getEnv("INVENTORY_XLSX_SHEET", ""),
			CacheTTL:     getDurationEnv("CATALOG_CACHE_TTL", 60*time.Second),
			FetchTimeout: getDurationEnv("CATALOG_FETCH_TIMEOUT", 10*time.Second),
			SearchLimit:  getIntEnv("SEARCH_LIMIT", 48),
			SearchRPS:    getFloatEnv("SEARCH_RPS", 5),
			SearchBurst:  getIntEnv("SEARCH_BURST", 10),
		},
		Payment: PaymentConfig{
			TossSecretKey: getEnv("TOSS_SECRET_KEY", ""),
			ConfirmURL:    getEnv("TOSS_CONFIRM_URL", "https://api.tosspayments.com/v1/payments/confirm"),
			Timeout:       getDurationEnv("PAYMENT_TIMEOUT", 15*time.Second),
		},
		Admin: AdminConfig{
			Secret: getEnv("ADMIN_SECRET", ""),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "bookmook-storefront"),
		},
	}

	cfg.Email.VerifyURL = strings.TrimRight(getEnv("VERIFY_BASE_URL", cfg.Email.SiteURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Auth.TokenFormat {
	case TokenFormatPaseto:
		if len(c.Auth.PasetoKey) != 32 {
			return fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(c.Auth.PasetoKey))
		}
	case TokenFormatJWT:
		if len(c.Auth.JWTSecret) == 0 {
			return errors.New("JWT_SECRET is required when AUTH_TOKEN_FORMAT=jwt")
		}
	default:
		return fmt.Errorf("unsupported AUTH_TOKEN_FORMAT %q", c.Auth.TokenFormat)
	}

	if c.Catalog.CSVURL == "" && c.Catalog.XLSXPath == "" {
		return errors.New("one of INVENTORY_CSV_URL or INVENTORY_XLSX_PATH is required")
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return f
}

// getDurationEnv accepts Go duration strings ("90s", "168h") or a bare
// number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
