package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookmook/storefront/internal/user"
)

// SessionClaims is what a session token carries. Nothing about a session is
// stored server-side.
type SessionClaims struct {
	UserID    uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(claims SessionClaims, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*SessionClaims, error)
}

// UserStore is the persistence the auth flows need. *user.Repository
// satisfies it.
type UserStore interface {
	UpsertPending(ctx context.Context, p user.PendingSignup) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (*user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd user.ProfileUpdate) (*user.User, error)
}

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(ctx context.Context, toEmail, name, token string) error
}

// RateLimiter counts attempts per client IP. *ratelimit.Limiter satisfies it.
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}
