package user

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/database"
)

func TestTranslateError_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
		field      string
	}{
		{database.UsersEmailKey, ErrDuplicateEmail, "email"},
		{database.UsersNicknameKey, ErrDuplicateNickname, "nickname"},
		{database.UsersPhoneKey, ErrDuplicatePhone, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := translateError(&pq.Error{Code: "23505", Constraint: tt.constraint}, "op")

			assert.ErrorIs(t, err, tt.want)
			var conflict *apperr.ConflictError
			assert.True(t, errors.As(err, &conflict))
			assert.Equal(t, tt.field, conflict.Field)
		})
	}
}

func TestTranslateError_OtherErrorsAreWrapped(t *testing.T) {
	base := &pq.Error{Code: "23503", Constraint: "users_something_fkey"}
	err := translateError(base, "failed to update profile")

	assert.False(t, apperr.IsConflict(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "failed to update profile")

	plain := errors.New("connection reset")
	assert.ErrorIs(t, translateError(plain, "op"), plain)
}

func TestTranslateError_UnknownUniqueConstraint(t *testing.T) {
	err := translateError(&pq.Error{Code: "23505", Constraint: "other_key"}, "op")
	assert.False(t, apperr.IsConflict(err))
}

func TestMapDBUserToModel_OptionalColumns(t *testing.T) {
	nick := "책벌레"
	token := "tok"
	u := mapDBUserToModel(&database.User{
		Email:       "a@b.com",
		Nickname:    &nick,
		VerifyToken: &token,
	})

	assert.Equal(t, "책벌레", u.Nickname)
	assert.Empty(t, u.Phone)
	assert.Equal(t, "tok", u.VerifyToken)
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	if assert.NotNil(t, optional("x")) {
		assert.Equal(t, "x", *optional("x"))
	}
}
