package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Prefijos de los identificadores de negocio.
const (
	PrefixConsignment = "CSG"
	PrefixAgent       = "AGT"
	PrefixSale        = "TXN"
	PrefixSKU         = "SKU"
)

// IdentifierWidth ancho mínimo del consecutivo (se rellena con ceros).
const IdentifierWidth = 4

// FormatIdentifier PREFIX-SCOPE-NNNN. Por encima de 9999 el número sigue creciendo sin truncar.
func FormatIdentifier(prefix, scope string, n int64) string {
	return fmt.Sprintf("%s-%s-%0*d", prefix, scope, IdentifierWidth, n)
}

// ParseIdentifier separa prefijo, ámbito y consecutivo de un identificador.
func ParseIdentifier(id string) (prefix, scope string, n int64, err error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", 0, fmt.Errorf("identificador %q: %w", id, domain.ErrInvalidInput)
	}
	n, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil || n <= 0 {
		return "", "", 0, fmt.Errorf("identificador %q: %w", id, domain.ErrInvalidInput)
	}
	return parts[0], parts[1], n, nil
}

// YearScope ámbito anual usado por consignaciones, asignaciones y ventas.
func YearScope(t time.Time) string {
	return strconv.Itoa(t.Year())
}
