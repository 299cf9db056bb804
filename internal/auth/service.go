package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/httputil"
	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/user"
)

var (
	ErrAlreadyRegistered = &apperr.ConflictError{
		Field:   "email",
		Message: "this email is already registered, please log in",
		Code:    httputil.CodeAlreadyRegistered,
	}
	ErrInvalidCredentials = &apperr.AuthError{
		Code:    httputil.CodeInvalidCredentials,
		Message: "email or password is incorrect",
	}
	ErrEmailNotVerified = &apperr.AuthError{
		Code:      httputil.CodeEmailNotVerified,
		Message:   "complete email verification before logging in",
		Forbidden: true,
	}
	ErrVerificationFailed = &apperr.AuthError{
		Code:    httputil.CodeVerificationFailed,
		Message: "verification link is invalid or has expired",
	}
	ErrVerifyEmailFirst = &apperr.AuthError{
		Code:      httputil.CodeVerifyEmailFirst,
		Message:   "verify your email before registering a phone number",
		Forbidden: true,
	}
	ErrSessionRequired = &apperr.AuthError{
		Code:    httputil.CodeMissingAuth,
		Message: "login required",
	}
)

var (
	registerPhonePattern = regexp.MustCompile(`^[0-9]{10,20}$`)
	profilePhonePattern  = regexp.MustCompile(`^[0-9]{10,11}$`)
)

const minPasswordLength = 6

// RegisterInput is a signup attempt as submitted.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
	Nickname        string
	Phone           string
}

// ProfileInput carries the profile fields a member submitted. Nil leaves the
// field untouched.
type ProfileInput struct {
	Name     *string
	Nickname *string
	Phone    *string
}

// Service implements registration, verification, login and profile updates.
type Service struct {
	store           UserStore
	tokens          TokenService
	mailer          EmailService
	logger          *logging.Logger
	sessionDuration time.Duration
	verifyTTL       time.Duration
	now             func() time.Time
}

func NewService(
	store UserStore,
	tokens TokenService,
	mailer EmailService,
	logger *logging.Logger,
	sessionDuration time.Duration,
	verifyTTL time.Duration,
) *Service {
	return &Service{
		store:           store,
		tokens:          tokens,
		mailer:          mailer,
		logger:          logger,
		sessionDuration: sessionDuration,
		verifyTTL:       verifyTTL,
		now:             time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SessionDuration is how long issued session tokens stay valid.
func (s *Service) SessionDuration() time.Duration {
	return s.sessionDuration
}

// Register creates a pending signup, or replaces the pending signup of the
// same email, and mails a verification link. A verified owner of the email
// yields ErrAlreadyRegistered. Mail delivery failures are logged only.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Phone = cleanPhone(in.Phone)

	if err := validateRegister(in); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verifyToken, err := generateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	pending, err := s.store.UpsertPending(ctx, user.PendingSignup{
		Email:         in.Email,
		Name:          in.Name,
		Nickname:      in.Nickname,
		Phone:         in.Phone,
		PasswordHash:  passwordHash,
		VerifyToken:   verifyToken,
		VerifyExpires: s.now().Add(s.verifyTTL),
	})
	if err != nil {
		if errors.Is(err, user.ErrAlreadyRegistered) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to store pending signup: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, pending.Email, pending.Name, verifyToken); err != nil {
		s.logger.Warn("failed to send verification email", "user_id", pending.ID, "error", err.Error())
	}

	return pending, nil
}

// VerifyEmail consumes a verification token. Wrong, expired and already used
// tokens all fail the same way.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*user.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrVerificationFailed
	}

	u, err := s.store.ConsumeVerifyToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrVerificationFailed
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}

	return u, nil
}

// Login checks credentials and returns a signed session token. An unknown
// email and a wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	email = normalizeEmail(email)

	err := firstInvalid(
		check("email", email,
			validation.Required.Error("enter your email"),
			is.EmailFormat.Error("email format is invalid"),
		),
		check("password", password, validation.Required.Error("enter your password")),
	)
	if err != nil {
		return "", nil, err
	}

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !u.IsVerified {
		return "", nil, ErrEmailNotVerified
	}

	if !VerifyPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	token, err := s.tokens.CreateToken(SessionClaims{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.Name,
		IssuedAt: now,
	}, s.sessionDuration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return token, u, nil
}

// Session resolves a session token. Missing, malformed and expired tokens
// all yield nil.
func (s *Service) Session(token string) *SessionClaims {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil
	}
	return claims
}

// Me returns the current record of the session's user, or nil when the
// session is anonymous or its user no longer exists.
func (s *Service) Me(ctx context.Context, claims *SessionClaims) (*user.User, error) {
	if claims == nil {
		return nil, nil
	}

	u, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return u, nil
}

// UpdateProfile changes name, nickname and phone. Setting a phone number
// requires a verified email.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*user.User, error) {
	current, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var upd user.ProfileUpdate

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := firstInvalid(check("name", name, validation.Required.Error("enter your name"))); err != nil {
			return nil, err
		}
		upd.Name = &name
	}

	if in.Nickname != nil {
		nickname := strings.TrimSpace(*in.Nickname)
		err := firstInvalid(check("nickname", nickname,
			validation.Required.Error("nickname must be at least 2 characters"),
			validation.RuneLength(2, 0).Error("nickname must be at least 2 characters"),
		))
		if err != nil {
			return nil, err
		}
		upd.Nickname = &nickname
	}

	if in.Phone != nil {
		if !current.IsVerified {
			return nil, ErrVerifyEmailFirst
		}
		phone := cleanPhone(*in.Phone)
		err := firstInvalid(check("phone", phone,
			validation.Match(profilePhonePattern).Error("phone number format is invalid"),
		))
		if err != nil {
			return nil, err
		}
		upd.Phone = &phone
	}

	if upd.Name == nil && upd.Nickname == nil && upd.Phone == nil {
		return current, nil
	}

	updated, err := s.store.UpdateProfile(ctx, userID, upd)
	if err != nil {
		if apperr.IsConflict(err) || errors.Is(err, user.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return updated, nil
}

func validateRegister(in RegisterInput) error {
	return firstInvalid(
		check("name", in.Name, validation.Required.Error("enter your name")),
		check("email", in.Email,
			validation.Required.Error("enter your email"),
			is.EmailFormat.Error("email format is invalid"),
		),
		check("nickname", in.Nickname,
			validation.RuneLength(2, 0).Error("nickname must be at least 2 characters"),
		),
		check("phone", in.Phone,
			validation.Match(registerPhonePattern).Error("phone number must be 10 to 20 digits"),
		),
		check("password", in.Password,
			validation.Required.Error(fmt.Sprintf("password must be at least %d characters", minPasswordLength)),
			validation.RuneLength(minPasswordLength, 0).Error(fmt.Sprintf("password must be at least %d characters", minPasswordLength)),
		),
		check("confirmPassword", in.ConfirmPassword,
			validation.Required.Error("enter your password again"),
			validation.In(in.Password).Error("passwords do not match"),
		),
	)
}

type fieldCheck struct {
	field string
	value string
	rules []validation.Rule
}

func check(field, value string, rules ...validation.Rule) fieldCheck {
	return fieldCheck{field: field, value: value, rules: rules}
}

// firstInvalid runs checks in order and reports only the first failing
// field.
func firstInvalid(checks ...fieldCheck) error {
	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			return apperr.Validation(c.field, err.Error())
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cleanPhone(phone string) string {
	return strings.TrimSpace(strings.ReplaceAll(phone, "-", ""))
}
