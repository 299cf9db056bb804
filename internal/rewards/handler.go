package rewards

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bookmook/storefront/internal/auth"
	"github.com/bookmook/storefront/internal/httputil"
	"github.com/bookmook/storefront/internal/logging"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// EarnRequest carries a purchase amount, as a JSON number or numeric string.
type EarnRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number"`
}

// EarnResponse reports the points credited by one purchase.
type EarnResponse struct {
	OK bool `json:"ok"`
	Accrual
}

// Earn credits loyalty points for a purchase
// @Summary      Earn reward points
// @Description  Credit floor(amount * 0.03) points to the logged-in member
// @Tags         rewards
// @Accept       json
// @Produce      json
// @Param        request body EarnRequest true "Purchase amount"
// @Success      200 {object} EarnResponse
// @Failure      400 {object} httputil.ErrorResponse "Non-positive or non-numeric amount"
// @Failure      401 {object} httputil.ErrorResponse "Login required"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /rewards/earn [post]
func (h *Handler) Earn(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondAppError(w, r, auth.ErrSessionRequired)
		return
	}

	var req EarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid earn request body", "error", err.Error())
		httputil.RespondJSON(w, httputil.ErrorResponse{
			Error: "amount must be a number",
			Code:  httputil.CodeValidationFailed,
			Field: "amount",
		}, http.StatusBadRequest)
		return
	}

	accrual, err := h.service.Earn(r.Context(), userID, req.Amount)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, EarnResponse{OK: true, Accrual: *accrual}, http.StatusOK)
}
