// Package admin serves the staff-only member tools: member lookup and
// exchange-ticket grants. Every request must carry the shared admin secret.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/httputil"
	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/user"
)

// SecretHeader carries the admin secret.
const SecretHeader = "X-Admin-Secret"

// MemberFinder looks members up. *user.Repository satisfies it.
type MemberFinder interface {
	FindMember(ctx context.Context, q user.MemberQuery) (*user.User, error)
}

// TicketGranter adds exchange tickets. *rewards.Service satisfies it.
type TicketGranter interface {
	GrantTickets(ctx context.Context, userID uuid.UUID, count int64) (int64, error)
}

type Handler struct {
	members MemberFinder
	tickets TicketGranter
	secret  []byte
}

func NewHandler(members MemberFinder, tickets TicketGranter, secret string) *Handler {
	return &Handler{members: members, tickets: tickets, secret: []byte(secret)}
}

// RequireSecret rejects requests whose X-Admin-Secret does not match. An
// empty configured secret disables the admin routes entirely.
func (h *Handler) RequireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		given := []byte(r.Header.Get(SecretHeader))
		if len(h.secret) == 0 || subtle.ConstantTimeCompare(given, h.secret) != 1 {
			logging.GetLoggerFromContext(r.Context()).Warn("admin secret rejected")
			httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeAdminUnauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LookupRequest holds a free-form query: an email, a phone number with or
// without dashes, or a nickname.
type LookupRequest struct {
	Query string `json:"query"`
}

// Member is the admin view of an account.
type Member struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Nickname        string    `json:"nickname,omitempty"`
	Email           string    `json:"email"`
	ExchangeTickets int64     `json:"exchangeTickets"`
}

// LookupResponse carries a null member when nothing matched.
type LookupResponse struct {
	User *Member `json:"user"`
}

// GrantRequest adds Amount tickets to UserID.
type GrantRequest struct {
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
}

// GrantResponse reports the balance after the grant.
type GrantResponse struct {
	OK             bool  `json:"ok"`
	CurrentTickets int64 `json:"currentTickets"`
}

// queryFor matches q against email, phone with dashes removed, and
// nickname.
func queryFor(q string) user.MemberQuery {
	q = strings.TrimSpace(q)
	return user.MemberQuery{
		Email:    q,
		Phone:    strings.ReplaceAll(q, "-", ""),
		Nickname: q,
	}
}

// Lookup finds a member
// @Summary      Look up a member
// @Description  Find a member by email, phone (dashes ignored) or nickname
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Secret header string true "Admin secret"
// @Param        request body LookupRequest true "Query"
// @Success      200 {object} LookupResponse
// @Failure      401 {object} httputil.ErrorResponse "Bad admin secret"
// @Router       /admin/members/lookup [post]
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid lookup request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		httputil.RespondJSON(w, LookupResponse{}, http.StatusOK)
		return
	}

	found, err := h.members.FindMember(r.Context(), queryFor(req.Query))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondJSON(w, LookupResponse{}, http.StatusOK)
			return
		}
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, LookupResponse{User: &Member{
		ID:              found.ID,
		Name:            found.Name,
		Nickname:        found.Nickname,
		Email:           found.Email,
		ExchangeTickets: found.ExchangeTickets,
	}}, http.StatusOK)
}

// GrantTickets adds exchange tickets to a member
// @Summary      Grant exchange tickets
// @Description  Atomically add tickets to a member's balance
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Secret header string true "Admin secret"
// @Param        request body GrantRequest true "Member and ticket count"
// @Success      200 {object} GrantResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid user id or count"
// @Failure      401 {object} httputil.ErrorResponse "Bad admin secret"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /admin/members/tickets [post]
func (h *Handler) GrantTickets(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid grant request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := validation.Validate(req.UserID,
		validation.Required.Error("userId is required"),
		validation.By(func(value interface{}) error {
			if _, err := uuid.Parse(value.(string)); err != nil {
				return errors.New("userId must be a UUID")
			}
			return nil
		}),
	)
	if err != nil {
		httputil.RespondAppError(w, r, apperr.Validation("userId", err.Error()))
		return
	}
	userID := uuid.MustParse(req.UserID)

	balance, err := h.tickets.GrantTickets(r.Context(), userID, req.Amount)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logger.Info("admin granted exchange tickets", "user_id", userID, "count", req.Amount)

	httputil.RespondJSON(w, GrantResponse{OK: true, CurrentTickets: balance}, http.StatusOK)
}
