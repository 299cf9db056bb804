package user

import (
	"time"

	"github.com/google/uuid"
)

// User is an account as seen by the rest of the application. Nickname and
// Phone are empty until the member sets them.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Nickname        string     `json:"nickname,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	PasswordHash    string     `json:"-"` // Never expose password hash in JSON
	IsVerified      bool       `json:"isVerified"`
	VerifyToken     string     `json:"-"`
	VerifyExpires   *time.Time `json:"-"`
	ExchangeTickets int64      `json:"exchangeTickets"`
	RewardPoints    int64      `json:"rewardPoints"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// PendingSignup is the record written by registration. It either creates a
// new unverified user or overwrites one that is still unverified.
type PendingSignup struct {
	Email         string
	Name          string
	Nickname      string
	Phone         string
	PasswordHash  string
	VerifyToken   string
	VerifyExpires time.Time
}

// ProfileUpdate carries the fields a member may change. Nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Nickname *string
	Phone    *string
}

// MemberQuery selects a member by any of its unique fields. Empty fields
// are ignored.
type MemberQuery struct {
	Email    string
	Phone    string
	Nickname string
}
