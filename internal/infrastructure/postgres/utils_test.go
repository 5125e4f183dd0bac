package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr("op", nil))

	err := wrapErr("insert pool", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = wrapErr("update pool", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40001"}))
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.True(t, domain.KindOf(err).Retryable())

	err = wrapErr("update pool", &pgconn.PgError{Code: "40P01"})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	err = wrapErr("list", errors.New("connection refused"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	err = wrapErr("list", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestWrapErr_CheckViolation(t *testing.T) {
	err := wrapErr("insert payment", &pgconn.PgError{Code: "23514", ConstraintName: "payments_amount_check"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestNumberTaken(t *testing.T) {
	taken := &pgconn.PgError{Code: "23505", ConstraintName: "sales_number_key"}
	assert.True(t, numberTaken(taken, "sales_number_key"))
	assert.True(t, numberTaken(fmt.Errorf("exec: %w", taken), "sales_number_key"))
	assert.False(t, numberTaken(taken, "aggregates_number_key"))
	assert.False(t, numberTaken(&pgconn.PgError{Code: "23505", ConstraintName: "sales_pkey"}, "sales_number_key"))
	assert.False(t, numberTaken(errors.New("23505"), "sales_number_key"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isRetryable(errors.New("40001")))
}

func TestIdentifierPattern(t *testing.T) {
	assert.Equal(t, "TXN-2025-%", identifierPattern("TXN", "2025"))
	assert.Equal(t, `A\_B-2025-%`, identifierPattern("A_B", "2025"))
}
