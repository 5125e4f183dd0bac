package repository

import "context"

// SequenceRepository consecutivos de identificadores PREFIX-SCOPE-NNNN.
type SequenceRepository interface {
	// MaxNumber mayor consecutivo ya persistido (números de consignación, de venta y SKUs).
	MaxNumber(ctx context.Context, prefix, scope string) (int64, error)
	// Reserve guarda y devuelve max(último reservado, floor) + 1 de forma atómica en el
	// almacenamiento: dos llamadas, aunque vengan de procesos distintos, nunca reciben el
	// mismo valor.
	Reserve(ctx context.Context, prefix, scope string, floor int64) (int64, error)
}
