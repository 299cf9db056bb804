// Package payment confirms card payments with the Toss Payments gateway and
// credits reward points for confirmed purchases.
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/config"
)

const serviceName = "toss-payments"

const maxResponseSize = 1 << 20

// ErrNotConfigured is returned when no secret key is set.
var ErrNotConfigured = errors.New("payment gateway secret key is not configured")

// Confirmation identifies the payment to confirm. Amount is in won.
type Confirmation struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// GatewayError is the error body the gateway returns with a non-OK status.
type GatewayError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway status %d: %s %s", e.Status, e.Code, e.Message)
}

// Rejected reports whether the gateway refused the payment itself, as
// opposed to failing.
func (e *GatewayError) Rejected() bool {
	return e.Status >= 400 && e.Status < 500
}

// Client calls the confirm endpoint behind a circuit breaker. Rejections do
// not count against the breaker.
type Client struct {
	confirmURL string
	authHeader string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
}

func NewClient(cfg config.PaymentConfig) *Client {
	c := &Client{
		confirmURL: cfg.ConfirmURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer("bookmook/payment"),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        serviceName,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				var gwErr *GatewayError
				return err == nil || (errors.As(err, &gwErr) && gwErr.Rejected())
			},
		}),
	}
	if cfg.TossSecretKey != "" {
		c.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.TossSecretKey+":"))
	}
	return c
}

// Confirm finalizes a payment and returns the gateway's payment object
// untouched. Non-OK answers become an *apperr.UpstreamError wrapping a
// *GatewayError.
func (c *Client) Confirm(ctx context.Context, p Confirmation) (json.RawMessage, error) {
	if c.authHeader == "" {
		return nil, ErrNotConfigured
	}

	ctx, span := c.tracer.Start(ctx, "payment.confirm", trace.WithAttributes(
		attribute.String("order.id", p.OrderID),
		attribute.Int64("amount", p.Amount),
	))
	defer span.End()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.confirm(ctx, p)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirm")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperr.Upstream(serviceName, err)
		}
		return nil, err
	}

	return result.(json.RawMessage), nil
}

func (c *Client) confirm(ctx context.Context, p Confirmation) (json.RawMessage, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode confirmation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.confirmURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build confirm request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Upstream(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperr.Upstream(serviceName, err)
	}

	if resp.StatusCode != http.StatusOK {
		gwErr := &GatewayError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, gwErr); err != nil || gwErr.Code == "" {
			gwErr.Code = "UNKNOWN"
		}
		return nil, &apperr.UpstreamError{Service: serviceName, Status: resp.StatusCode, Err: gwErr}
	}

	if !json.Valid(body) {
		return nil, apperr.Upstream(serviceName, errors.New("gateway returned malformed JSON"))
	}

	return json.RawMessage(body), nil
}
