package dto

import "github.com/jhoicas/inventario-ledger/internal/domain"

// Result sobre común de respuesta de las operaciones del motor.
type Result struct {
	Success   bool             `json:"success"`
	Data      any              `json:"data,omitempty"`
	ErrorKind domain.ErrorKind `json:"error_kind,omitempty"`
	Message   string           `json:"message,omitempty"`
	Retryable bool             `json:"retryable,omitempty"`
}

// OK construye un resultado exitoso.
func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail construye un resultado fallido a partir de un error tipificado.
func Fail(err error) Result {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindStorageUnavailable {
		// no exponer detalles del driver
		msg = domain.ErrStorageUnavailable.Error()
	}
	return Result{Success: false, ErrorKind: kind, Message: msg, Retryable: kind.Retryable()}
}

// NewResult OK(data) si err es nil, Fail(err) en otro caso.
func NewResult(data any, err error) Result {
	if err != nil {
		return Fail(err)
	}
	return OK(data)
}
