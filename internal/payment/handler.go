package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/auth"
	"github.com/bookmook/storefront/internal/httputil"
	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/rewards"
)

// CodePaymentRejected is returned when the gateway refuses a payment.
const CodePaymentRejected = "PAYMENT_REJECTED"

// Confirmer finalizes payments. *Client satisfies it.
type Confirmer interface {
	Confirm(ctx context.Context, p Confirmation) (json.RawMessage, error)
}

// Earner credits points for a purchase. *rewards.Service satisfies it.
type Earner interface {
	Earn(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*rewards.Accrual, error)
}

type Handler struct {
	confirmer Confirmer
	earner    Earner
}

func NewHandler(confirmer Confirmer, earner Earner) *Handler {
	return &Handler{confirmer: confirmer, earner: earner}
}

// ConfirmRequest is posted by the checkout page after the gateway redirect.
type ConfirmRequest struct {
	PaymentKey string          `json:"paymentKey"`
	OrderID    string          `json:"orderId"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"number"`
}

func (r ConfirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PaymentKey, validation.Required.Error("paymentKey is required")),
		validation.Field(&r.OrderID, validation.Required.Error("orderId is required")),
		validation.Field(&r.Amount, validation.By(wholePositiveAmount)),
	)
}

func wholePositiveAmount(value interface{}) error {
	amount, _ := value.(decimal.Decimal)
	if !amount.IsPositive() || !amount.IsInteger() {
		return errors.New("amount must be a positive whole number")
	}
	return nil
}

// ConfirmResponse wraps the gateway's payment object. Reward is set when a
// logged-in member earned points.
type ConfirmResponse struct {
	OK     bool             `json:"ok"`
	Data   json.RawMessage  `json:"data" swaggertype:"object"`
	Reward *rewards.Accrual `json:"reward,omitempty"`
}

// RejectedResponse relays the gateway's refusal.
type RejectedResponse struct {
	OK      bool          `json:"ok"`
	Error   string        `json:"error"`
	Code    string        `json:"code"`
	Gateway *GatewayError `json:"gateway"`
}

// Confirm finalizes a payment
// @Summary      Confirm payment
// @Description  Confirm a payment with the gateway. Logged-in members earn reward points for the amount.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body ConfirmRequest true "Payment identifiers"
// @Success      200 {object} ConfirmResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing field or invalid amount"
// @Failure      402 {object} RejectedResponse "Payment refused by the gateway"
// @Failure      502 {object} httputil.ErrorResponse "Gateway unavailable"
// @Router       /payments/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid payment confirm body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.RespondAppError(w, r, apperr.FirstInvalid(err, "paymentKey", "orderId", "amount"))
		return
	}

	data, err := h.confirmer.Confirm(r.Context(), Confirmation{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount.IntPart(),
	})
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) && gwErr.Rejected() {
			logger.Warn("payment rejected", "order_id", req.OrderID, "status", gwErr.Status, "code", gwErr.Code)
			httputil.RespondJSON(w, RejectedResponse{
				Error:   gwErr.Message,
				Code:    CodePaymentRejected,
				Gateway: gwErr,
			}, http.StatusPaymentRequired)
			return
		}
		httputil.RespondAppError(w, r, err)
		return
	}

	logger.Info("payment confirmed", "order_id", req.OrderID, "amount", req.Amount.String())

	resp := ConfirmResponse{OK: true, Data: data}

	if userID, ok := auth.GetUserIDFromContext(r.Context()); ok {
		accrual, err := h.earner.Earn(r.Context(), userID, req.Amount)
		if err != nil {
			logger.Error("failed to accrue reward points", "user_id", userID, "order_id", req.OrderID, "error", err.Error())
		} else {
			resp.Reward = accrual
		}
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}
