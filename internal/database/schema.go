package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// uniqueness is enforced here, not in handlers
var userConstraints = []string{
	`ALTER TABLE users ADD CONSTRAINT ` + UsersEmailKey + ` UNIQUE (email)`,
	`ALTER TABLE users ADD CONSTRAINT ` + UsersNicknameKey + ` UNIQUE (nickname)`,
	`ALTER TABLE users ADD CONSTRAINT ` + UsersPhoneKey + ` UNIQUE (phone)`,
	`ALTER TABLE users ADD CONSTRAINT users_exchange_tickets_check CHECK (exchange_tickets >= 0)`,
	`ALTER TABLE users ADD CONSTRAINT users_reward_points_check CHECK (reward_points >= 0)`,
}

// EnsureSchema creates the users table and its constraints if they do not
// exist yet. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		return fmt.Errorf("failed to enable pgcrypto: %w", err)
	}

	_, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	for _, stmt := range userConstraints {
		// ADD CONSTRAINT has no IF NOT EXISTS, so guard it with a DO block
		guarded := fmt.Sprintf(`DO $$ BEGIN %s; EXCEPTION WHEN duplicate_object OR duplicate_table THEN NULL; END $$`, stmt)
		if _, err := db.ExecContext(ctx, guarded); err != nil {
			return fmt.Errorf("failed to apply users constraint: %w", err)
		}
	}

	return nil
}
