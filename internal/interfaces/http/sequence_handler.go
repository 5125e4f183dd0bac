package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// SequenceHandler expone el secuenciador de identificadores (protegido).
type SequenceHandler struct {
	responder
	numbers inventory.NumberGenerator
}

// NewSequenceHandler construye el handler.
func NewSequenceHandler(numbers inventory.NumberGenerator, log *logger.Logger) *SequenceHandler {
	return &SequenceHandler{responder: responder{log: log}, numbers: numbers}
}

// Next godoc
// @Summary      Siguiente identificador PREFIJO-ÁMBITO-NNNN
// @Tags         sequences
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NextSequenceRequest  true  "Prefijo y ámbito"
// @Success      200   {object}  dto.Result
// @Failure      400   {object}  dto.Result
// @Router       /api/sequences/next [post]
func (h *SequenceHandler) Next(c *fiber.Ctx) error {
	var in dto.NextSequenceRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return h.send(c, 0, nil, err)
	}
	id, err := h.numbers.Next(c.UserContext(), in.Prefix, in.Scope)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.NextSequenceResponse{Identifier: id}, nil)
}
