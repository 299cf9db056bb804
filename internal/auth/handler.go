package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/bookmook/storefront/internal/httputil"
	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/ratelimit"
	"github.com/bookmook/storefront/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter RateLimiter
	cookie      CookieConfig
	siteURL     string
}

func NewHandler(service *Service, rateLimiter RateLimiter, cookie CookieConfig, siteURL string) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		cookie:      cookie,
		siteURL:     siteURL,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name"`
	Nickname        string `json:"nickname,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileRequest carries the fields to change. Omitted fields stay as they
// are.
type ProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Nickname        string    `json:"nickname,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	IsVerified      bool      `json:"isVerified"`
	ExchangeTickets int64     `json:"exchangeTickets"`
	RewardPoints    int64     `json:"rewardPoints"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// LoginResponse is returned after a successful login. The token itself
// travels in the session cookie.
type LoginResponse struct {
	OK   bool         `json:"ok"`
	User UserResponse `json:"user"`
}

// MeResponse carries a null user for anonymous callers.
type MeResponse struct {
	User *UserResponse `json:"user"`
}

// ProfileResponse is returned after a profile update.
type ProfileResponse struct {
	OK   bool         `json:"ok"`
	User UserResponse `json:"user"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Nickname:        u.Nickname,
		Phone:           u.Phone,
		IsVerified:      u.IsVerified,
		ExchangeTickets: u.ExchangeTickets,
		RewardPoints:    u.RewardPoints,
	}
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create or replace a pending signup and send a verification email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Signup form"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse "First failing field"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered, or nickname/phone in use"
// @Failure      429 {object} httputil.ErrorResponse "Too many attempts"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limited(w, r, ratelimit.PurposeRegister) {
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	pending, err := h.service.Register(r.Context(), RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
		Nickname:        req.Nickname,
		Phone:           req.Phone,
	})
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logger.Info("signup pending verification", "user_id", pending.ID)

	httputil.RespondJSON(w, RegisterResponse{
		OK:      true,
		Message: "Signup received. Check your inbox for the verification link.",
	}, http.StatusCreated)
}

// VerifyEmail handles the link from the verification email
// @Summary      Verify email
// @Description  Consume a verification token and redirect to the result page.
// @Tags         auth
// @Param        token query string true "Verification token"
// @Success      302 "Redirect to /verify-result?success=true|false"
// @Router       /auth/verify-email [get]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	success := "true"
	u, err := h.service.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		success = "false"
		if errors.Is(err, ErrVerificationFailed) {
			logger.Warn("email verification failed: invalid or expired token")
		} else {
			logger.Error("email verification failed: internal error", "error", err.Error())
		}
	} else {
		logger.Info("email verified", "user_id", u.ID)
	}

	http.Redirect(w, r, h.siteURL+"/verify-result?"+url.Values{"success": {success}}.Encode(), http.StatusFound)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate and receive the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      403 {object} httputil.ErrorResponse "Email not verified"
// @Failure      429 {object} httputil.ErrorResponse "Too many attempts"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limited(w, r, ratelimit.PurposeLogin) {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	token, u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	SetSessionCookie(w, h.cookie, token)

	logger.Info("user logged in", "user_id", u.ID)

	httputil.RespondJSON(w, LoginResponse{OK: true, User: toUserResponse(u)}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Clear the session cookie. The token stays valid until it expires.
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]bool
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, h.cookie)
	httputil.RespondJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// Me returns the logged-in user
// @Summary      Current user
// @Description  The session's user, or null when anonymous
// @Tags         auth
// @Produce      json
// @Success      200 {object} MeResponse
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := GetSessionFromContext(r.Context())

	u, err := h.service.Me(r.Context(), claims)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	if u == nil {
		httputil.RespondJSON(w, MeResponse{}, http.StatusOK)
		return
	}

	resp := toUserResponse(u)
	httputil.RespondJSON(w, MeResponse{User: &resp}, http.StatusOK)
}

// UpdateProfile changes the member's profile
// @Summary      Update profile
// @Description  Change name, nickname or phone. Phone requires a verified email.
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body ProfileRequest true "Fields to change"
// @Success      200 {object} ProfileResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Login required"
// @Failure      403 {object} httputil.ErrorResponse "Email not verified"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      409 {object} httputil.ErrorResponse "Nickname or phone in use"
// @Router       /user/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondAppError(w, r, ErrSessionRequired)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), userID, ProfileInput{
		Name:     req.Name,
		Nickname: req.Nickname,
		Phone:    req.Phone,
	})
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logger.Info("profile updated", "user_id", userID)

	httputil.RespondJSON(w, ProfileResponse{OK: true, User: toUserResponse(updated)}, http.StatusOK)
}

// limited records the attempt and answers 429 when the caller's window is
// used up. Limiter errors fail open.
func (h *Handler) limited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	if h.rateLimiter == nil {
		return false
	}

	logger := logging.GetLoggerFromContext(r.Context())
	ip := ratelimit.ClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}
