package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/database"
)

const uniqueViolation = "23505"

var (
	ErrNotFound = &apperr.NotFoundError{Resource: "user"}

	// ErrAlreadyRegistered is returned by UpsertPending when the email
	// belongs to a verified account.
	ErrAlreadyRegistered = errors.New("email already registered")

	ErrDuplicateEmail    = apperr.Conflict("email", "email is already in use")
	ErrDuplicateNickname = apperr.Conflict("nickname", "nickname is already in use")
	ErrDuplicatePhone    = apperr.Conflict("phone", "phone number is already in use")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// UpsertPending inserts a new unverified user, or overwrites the record of
// the same email while it is still unverified. A verified owner of the email
// yields ErrAlreadyRegistered and no change.
func (r *Repository) UpsertPending(ctx context.Context, p PendingSignup) (*User, error) {
	dbUser := &database.User{
		Email:         p.Email,
		Name:          p.Name,
		Nickname:      optional(p.Nickname),
		Phone:         optional(p.Phone),
		PasswordHash:  p.PasswordHash,
		IsVerified:    false,
		VerifyToken:   &p.VerifyToken,
		VerifyExpires: &p.VerifyExpires,
	}

	result, err := r.upsertPendingQuery(dbUser).Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadyRegistered
		}
		return nil, translateError(err, "failed to upsert pending user")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrAlreadyRegistered
	}

	return mapDBUserToModel(dbUser), nil
}

// upsertPendingQuery only touches the row while it is unverified, so a
// verified owner comes back with no rows.
func (r *Repository) upsertPendingQuery(dbUser *database.User) *bun.InsertQuery {
	return r.db.NewInsert().
		Model(dbUser).
		ExcludeColumn("id", "created_at", "updated_at", "exchange_tickets", "reward_points").
		On("CONFLICT (email) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("nickname = EXCLUDED.nickname").
		Set("phone = EXCLUDED.phone").
		Set("password_hash = EXCLUDED.password_hash").
		Set("verify_token = EXCLUDED.verify_token").
		Set("verify_expires = EXCLUDED.verify_expires").
		Set("updated_at = NOW()").
		Where("u.is_verified = FALSE").
		Returning("*")
}

// GetByEmail retrieves a user by email. Callers pass the normalized form.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("lower(email) = lower(?)", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// ConsumeVerifyToken marks the owner of an unexpired token as verified and
// clears the token in one statement. A wrong, expired or already consumed
// token returns ErrNotFound and changes nothing.
func (r *Repository) ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (*User, error) {
	dbUser := new(database.User)
	result, err := r.consumeTokenQuery(dbUser, token, now).Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to consume verify token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBUserToModel(dbUser), nil
}

func (r *Repository) consumeTokenQuery(dbUser *database.User, token string, now time.Time) *bun.UpdateQuery {
	return r.db.NewUpdate().
		Model(dbUser).
		Set("is_verified = TRUE").
		Set("verify_token = NULL").
		Set("verify_expires = NULL").
		Set("updated_at = ?", now).
		Where("verify_token = ?", token).
		Where("verify_expires > ?", now).
		Returning("*")
}

// UpdateProfile applies the non-nil fields of upd. An empty nickname or
// phone clears the column.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	dbUser := new(database.User)
	q := r.db.NewUpdate().
		Model(dbUser).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*")

	if upd.Name != nil {
		q = q.Set("name = ?", *upd.Name)
	}
	if upd.Nickname != nil {
		q = q.Set("nickname = ?", optional(*upd.Nickname))
	}
	if upd.Phone != nil {
		q = q.Set("phone = ?", optional(*upd.Phone))
	}

	result, err := q.Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, translateError(err, "failed to update profile")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBUserToModel(dbUser), nil
}

// AddRewardPoints credits points and returns the new balance.
func (r *Repository) AddRewardPoints(ctx context.Context, id uuid.UUID, points int64) (int64, error) {
	return r.increment(ctx, id, "reward_points", points)
}

// AddExchangeTickets credits pass tickets and returns the new balance.
func (r *Repository) AddExchangeTickets(ctx context.Context, id uuid.UUID, tickets int64) (int64, error) {
	return r.increment(ctx, id, "exchange_tickets", tickets)
}

func (r *Repository) increment(ctx context.Context, id uuid.UUID, column string, delta int64) (int64, error) {
	var balance int64
	err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("? = ? + ?", bun.Ident(column), bun.Ident(column), delta).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("?", bun.Ident(column)).
		Scan(ctx, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment %s: %w", column, err)
	}

	return balance, nil
}

// FindMember returns the member matching any non-empty field of q. When
// several members match, an email match wins over phone, and phone over
// nickname.
func (r *Repository) FindMember(ctx context.Context, q MemberQuery) (*User, error) {
	if q.Email == "" && q.Phone == "" && q.Nickname == "" {
		return nil, ErrNotFound
	}

	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			if q.Email != "" {
				sq = sq.WhereOr("lower(email) = lower(?)", q.Email)
			}
			if q.Phone != "" {
				sq = sq.WhereOr("phone = ?", q.Phone)
			}
			if q.Nickname != "" {
				sq = sq.WhereOr("nickname = ?", q.Nickname)
			}
			return sq
		}).
		OrderExpr("CASE WHEN lower(email) = lower(?) THEN 0 WHEN phone = ? THEN 1 ELSE 2 END", q.Email, q.Phone).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// translateError maps a unique violation onto the conflict error of the
// column it names. Other errors are wrapped with msg.
func translateError(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case database.UsersEmailKey:
			return ErrDuplicateEmail
		case database.UsersNicknameKey:
			return ErrDuplicateNickname
		case database.UsersPhoneKey:
			return ErrDuplicatePhone
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	u := &User{
		ID:              dbu.ID,
		Email:           dbu.Email,
		Name:            dbu.Name,
		PasswordHash:    dbu.PasswordHash,
		IsVerified:      dbu.IsVerified,
		VerifyExpires:   dbu.VerifyExpires,
		ExchangeTickets: dbu.ExchangeTickets,
		RewardPoints:    dbu.RewardPoints,
		CreatedAt:       dbu.CreatedAt,
		UpdatedAt:       dbu.UpdatedAt,
	}
	if dbu.Nickname != nil {
		u.Nickname = *dbu.Nickname
	}
	if dbu.Phone != nil {
		u.Phone = *dbu.Phone
	}
	if dbu.VerifyToken != nil {
		u.VerifyToken = *dbu.VerifyToken
	}
	return u
}
