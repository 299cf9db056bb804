package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Unique constraint names on the users table. The user repository maps
// violations of these back to the offending field.
const (
	UsersEmailKey    = "users_email_key"
	UsersNicknameKey = "users_nickname_key"
	UsersPhoneKey    = "users_phone_key"
)

// User is the row shape of the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID              uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email           string     `bun:"email,notnull"`
	Name            string     `bun:"name,notnull,default:''"`
	Nickname        *string    `bun:"nickname"`
	Phone           *string    `bun:"phone"`
	PasswordHash    string     `bun:"password_hash,notnull"`
	IsVerified      bool       `bun:"is_verified,notnull,default:false"`
	VerifyToken     *string    `bun:"verify_token"`
	VerifyExpires   *time.Time `bun:"verify_expires"`
	ExchangeTickets int64      `bun:"exchange_tickets,notnull,default:0"`
	RewardPoints    int64      `bun:"reward_points,notnull,default:0"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}
