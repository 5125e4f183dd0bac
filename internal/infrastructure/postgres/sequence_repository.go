package postgres

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo mayor consecutivo persistido entre números de documento, de venta y SKUs.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// identifierPattern patrón LIKE para PREFIX-SCOPE-NNNN con comodines escapados.
func identifierPattern(prefix, scope string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return esc.Replace(prefix) + "-" + esc.Replace(scope) + "-%"
}

// MaxNumber 0 si no hay identificadores con ese prefijo y ámbito.
func (r *SequenceRepo) MaxNumber(ctx context.Context, prefix, scope string) (int64, error) {
	query := `
		SELECT COALESCE(MAX(CASE WHEN split_part(ident, '-', 3) ~ '^[0-9]{1,18}$'
			THEN split_part(ident, '-', 3)::bigint END), 0)
		FROM (
			SELECT number AS ident FROM aggregates
			UNION ALL SELECT number FROM sales
			UNION ALL SELECT sku FROM products
		) ids
		WHERE ident LIKE $1 AND split_part(ident, '-', 4) = ''`
	var n int64
	if err := r.q.QueryRow(ctx, query, identifierPattern(prefix, scope)).Scan(&n); err != nil {
		return 0, wrapErr("max sequence number", err)
	}
	return n, nil
}

// Reserve avanza el contador de document_sequences con un upsert: el conflicto sobre
// (prefix, scope) bloquea la fila, así que instancias concurrentes quedan en fila.
func (r *SequenceRepo) Reserve(ctx context.Context, prefix, scope string, floor int64) (int64, error) {
	query := `
		INSERT INTO document_sequences (prefix, scope, last_number)
		VALUES ($1, $2, $3::bigint + 1)
		ON CONFLICT (prefix, scope) DO UPDATE
		SET last_number = GREATEST(document_sequences.last_number, $3::bigint) + 1,
		    updated_at = now()
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, prefix, scope, floor).Scan(&n); err != nil {
		return 0, wrapErr("reserve sequence number", err)
	}
	return n, nil
}
