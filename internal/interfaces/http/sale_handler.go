package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// SaleHandler ventas directas y correcciones de líneas de venta (protegido).
type SaleHandler struct {
	responder
	uc *inventory.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *inventory.SaleUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{responder: responder{log: log}, uc: uc}
}

// Create godoc
// @Summary      Registrar venta directa
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DirectSaleRequest  true  "Cliente, tipo de pago y líneas"
// @Success      201   {object}  dto.Result
// @Failure      422   {object}  dto.Result
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.DirectSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	sale, err := h.uc.RecordDirectSale(c.UserContext(), GetActorID(c), in)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusCreated, dto.FromSale(sale), nil)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.Result
// @Failure      404  {object}  dto.Result
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromSale(sale), nil)
}

// EditLineQuantity godoc
// @Summary      Corregir cantidad de una línea de venta directa
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                   true  "ID de la venta"
// @Param        lineId  path  string                   true  "ID de la línea"
// @Param        body    body  dto.EditQuantityRequest  true  "Nueva cantidad"
// @Success      200     {object}  dto.Result
// @Router       /api/sales/{id}/lines/{lineId}/quantity [put]
func (h *SaleHandler) EditLineQuantity(c *fiber.Ctx) error {
	var in dto.EditQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	sale, err := h.uc.EditSaleLineQuantity(c.UserContext(), GetActorID(c), c.Params("id"), c.Params("lineId"), in)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromSale(sale), nil)
}
