package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// quantityFields campos cuya validación fallida se reporta como ErrInvalidQuantity.
var quantityFields = map[string]bool{
	"Quantity":    true,
	"NewQuantity": true,
	"Delta":       true,
	"Amount":      true,
}

// Validate valida el request antes de tocar cualquier pool.
// Devuelve ErrInvalidQuantity si falla un campo de cantidad, ErrInvalidInput en otro caso.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	base := domain.ErrInvalidInput
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if quantityFields[fe.StructField()] {
			base = domain.ErrInvalidQuantity
		}
		fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("%w: %s", base, strings.Join(fields, ", "))
}
