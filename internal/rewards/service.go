// Package rewards credits loyalty points for purchases and exchange tickets
// ("passes") granted by staff. The two are separate balances.
package rewards

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/logging"
)

// Rate is the share of a purchase amount credited as points.
var Rate = decimal.RequireFromString("0.03")

// MaxTicketGrant bounds a single staff grant.
const MaxTicketGrant = 100

// Store persists balances. *user.Repository satisfies it.
type Store interface {
	AddRewardPoints(ctx context.Context, id uuid.UUID, points int64) (int64, error)
	AddExchangeTickets(ctx context.Context, id uuid.UUID, tickets int64) (int64, error)
}

// Accrual is the outcome of crediting a purchase. RewardPoints is the new
// balance and is nil when nothing was written.
type Accrual struct {
	PointsAdded  int64  `json:"pointsAdded"`
	RewardPoints *int64 `json:"rewardPoints,omitempty"`
}

type Service struct {
	store  Store
	logger *logging.Logger
}

func NewService(store Store, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// PointsFor returns floor(amount * Rate). Non-positive amounts earn nothing.
func PointsFor(amount decimal.Decimal) int64 {
	if !amount.IsPositive() {
		return 0
	}
	return amount.Mul(Rate).Floor().IntPart()
}

var errNotPositive = errors.New("amount must be greater than zero")

func positive(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok || !amount.IsPositive() {
		return errNotPositive
	}
	return nil
}

// Earn credits points for a purchase of amount. An amount too small to earn
// a point succeeds and leaves the balance unchanged.
func (s *Service) Earn(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*Accrual, error) {
	if err := validation.Validate(amount, validation.By(positive)); err != nil {
		return nil, apperr.Validation("amount", err.Error())
	}

	points := PointsFor(amount)
	if points == 0 {
		return &Accrual{}, nil
	}

	balance, err := s.store.AddRewardPoints(ctx, userID, points)
	if err != nil {
		return nil, fmt.Errorf("failed to add reward points: %w", err)
	}

	s.logger.Info("reward points credited", "user_id", userID, "points", points, "balance", balance)

	return &Accrual{PointsAdded: points, RewardPoints: &balance}, nil
}

// GrantTickets adds count exchange tickets and returns the new balance.
func (s *Service) GrantTickets(ctx context.Context, userID uuid.UUID, count int64) (int64, error) {
	err := validation.Validate(count,
		validation.Required.Error("count must be at least 1"),
		validation.Min(int64(1)).Error("count must be at least 1"),
		validation.Max(int64(MaxTicketGrant)).Error(fmt.Sprintf("count must be at most %d", MaxTicketGrant)),
	)
	if err != nil {
		return 0, apperr.Validation("count", err.Error())
	}

	balance, err := s.store.AddExchangeTickets(ctx, userID, count)
	if err != nil {
		return 0, fmt.Errorf("failed to add exchange tickets: %w", err)
	}

	s.logger.Info("exchange tickets granted", "user_id", userID, "count", count, "balance", balance)

	return balance, nil
}
