// Package sequence emite identificadores de negocio PREFIX-SCOPE-NNNN monótonos por
// (prefijo, ámbito). Las llamadas de un mismo ámbito se serializan con un Locker; ámbitos
// distintos avanzan en paralelo. El contador vive en el almacenamiento, así que todas las
// instancias sobre la misma base comparten la secuencia. Un número emitido y no persistido
// deja un hueco; nunca se emite dos veces.
package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Locker exclusión mutua por clave. unlock libera el lock; no bloquea indefinidamente:
// respeta el deadline de ctx.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}

// Generator implementa inventory.NumberGenerator.
type Generator struct {
	repo   repository.SequenceRepository
	locker Locker
}

// NewGenerator construye el generador. locker nil usa un lock en proceso.
func NewGenerator(repo repository.SequenceRepository, locker Locker) *Generator {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Generator{repo: repo, locker: locker}
}

// Key clave de lock de un ámbito.
func Key(prefix, scope string) string {
	return "seq:" + prefix + ":" + scope
}

// Next devuelve el menor identificador estrictamente mayor que el más alto existente
// (persistido o ya reservado) para prefix y scope.
func (g *Generator) Next(ctx context.Context, prefix, scope string) (string, error) {
	if prefix == "" || scope == "" || strings.Contains(prefix, "-") || strings.Contains(scope, "-") {
		return "", fmt.Errorf("prefijo/ámbito %q/%q: %w", prefix, scope, domain.ErrInvalidInput)
	}
	unlock, err := g.locker.Lock(ctx, Key(prefix, scope))
	if err != nil {
		return "", err
	}
	// el lock se libera aunque ctx ya haya expirado
	defer func() { _ = unlock(context.WithoutCancel(ctx)) }()

	persisted, err := g.repo.MaxNumber(ctx, prefix, scope)
	if err != nil {
		return "", fmt.Errorf("consultar consecutivo: %w", err)
	}
	next, err := g.repo.Reserve(ctx, prefix, scope, persisted)
	if err != nil {
		return "", fmt.Errorf("reservar consecutivo: %w", err)
	}
	return inventory.FormatIdentifier(prefix, scope, next), nil
}
