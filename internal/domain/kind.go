package domain

import "errors"

// ErrorKind clasifica un error para el llamador (transporte, UI, reintentos).
type ErrorKind string

const (
	KindInvalidQuantity        ErrorKind = "InvalidQuantity"
	KindInsufficientStock      ErrorKind = "InsufficientStock"
	KindNegativeBalance        ErrorKind = "NegativeBalance"
	KindAggregateClosed        ErrorKind = "AggregateClosed"
	KindOutstandingBalance     ErrorKind = "OutstandingBalance"
	KindConcurrentModification ErrorKind = "ConcurrentModification"
	KindNotFound               ErrorKind = "NotFound"
	KindStorageUnavailable     ErrorKind = "StorageUnavailable"
	KindInvalidInput           ErrorKind = "InvalidInput"
	KindInvalidState           ErrorKind = "InvalidState"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidQuantity, KindInvalidQuantity},
	{ErrInsufficientStock, KindInsufficientStock},
	{ErrNegativeBalance, KindNegativeBalance},
	{ErrAggregateClosed, KindAggregateClosed},
	{ErrOutstandingBalance, KindOutstandingBalance},
	{ErrConcurrentModification, KindConcurrentModification},
	{ErrNotFound, KindNotFound},
	{ErrInvalidInput, KindInvalidInput},
	{ErrDuplicate, KindInvalidInput},
	{ErrInvalidState, KindInvalidState},
	{ErrStorageUnavailable, KindStorageUnavailable},
}

// KindOf devuelve el ErrorKind de err (acepta errores envueltos con %w).
// Cualquier error no tipificado se trata como falla de almacenamiento.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindStorageUnavailable
}

// Retryable indica si la operación puede reintentarse tal cual.
func (k ErrorKind) Retryable() bool {
	return k == KindConcurrentModification || k == KindStorageUnavailable
}
