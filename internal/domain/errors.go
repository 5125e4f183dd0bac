package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada error corresponde a un ErrorKind de la taxonomía del motor de inventario.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("la cantidad debe ser mayor a cero")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrNegativeBalance        = errors.New("el saldo resultante sería negativo")
	ErrAggregateClosed        = errors.New("el documento está cerrado")
	ErrOutstandingBalance     = errors.New("el documento tiene saldo pendiente")
	ErrInvalidState           = errors.New("operación no permitida en el estado actual")
	ErrConcurrentModification = errors.New("conflicto de concurrencia, reintente la operación")
	ErrStorageUnavailable     = errors.New("almacenamiento no disponible")
	ErrDuplicate              = errors.New("recurso duplicado")
)
