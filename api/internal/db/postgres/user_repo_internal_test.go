package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

func TestMapWriteError(t *testing.T) {
	t.Run("Unique violation is a conflict", func(t *testing.T) {
		err := mapWriteError("create user", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"})
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "users_email_key")
	})

	t.Run("Other errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := mapWriteError("update user", cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, domain.ErrConflict)
	})
}
