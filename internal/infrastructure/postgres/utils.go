package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Códigos SQLSTATE que el motor trata de forma especial.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// numberTaken violación del UNIQUE de un número de documento: otra instancia lo usó primero.
func numberTaken(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraint
}

// isCheckViolation un CHECK de la tabla rechazó la fila (cantidades o montos fuera de rango).
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeCheckViolation
}

// isRetryable fallas de serialización y deadlocks: la tx completa puede reintentarse.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

// wrapErr traduce errores del driver a la taxonomía del dominio conservando el detalle.
// Cancelaciones de contexto pasan tal cual.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case isCheckViolation(err):
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrInvalidInput)
	case isRetryable(err):
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrConcurrentModification)
	default:
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStorageUnavailable)
	}
}
