package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/lifecycle"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// AggregateHandler consignaciones y asignaciones a agentes (protegido).
type AggregateHandler struct {
	responder
	uc *lifecycle.UseCase
}

// NewAggregateHandler construye el handler.
func NewAggregateHandler(uc *lifecycle.UseCase, log *logger.Logger) *AggregateHandler {
	return &AggregateHandler{responder: responder{log: log}, uc: uc}
}

func (h *AggregateHandler) create(c *fiber.Ctx, kind entity.AggregateKind) error {
	var in dto.CreateAggregateRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	in.Kind = kind
	agg, err := h.uc.Create(c.UserContext(), GetActorID(c), in)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusCreated, dto.FromAggregate(agg), nil)
}

// CreateConsignment godoc
// @Summary      Crear consignación
// @Tags         aggregates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAggregateRequest  true  "Cliente, bodega, período y lotes"
// @Success      201   {object}  dto.Result
// @Failure      422   {object}  dto.Result
// @Router       /api/consignments [post]
func (h *AggregateHandler) CreateConsignment(c *fiber.Ctx) error {
	return h.create(c, entity.AggregateConsignment)
}

// CreateAgentAssignment godoc
// @Summary      Crear asignación a agente
// @Tags         aggregates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAggregateRequest  true  "Agente, bodega y lotes"
// @Success      201   {object}  dto.Result
// @Router       /api/agent-assignments [post]
func (h *AggregateHandler) CreateAgentAssignment(c *fiber.Ctx) error {
	return h.create(c, entity.AggregateAgent)
}

// GetByID godoc
// @Summary      Obtener consignación o asignación
// @Tags         aggregates
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.Result
// @Failure      404  {object}  dto.Result
// @Router       /api/aggregates/{id} [get]
func (h *AggregateHandler) GetByID(c *fiber.Ctx) error {
	agg, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromAggregate(agg), nil)
}

// List godoc
// @Summary      Listar consignaciones y asignaciones
// @Tags         aggregates
// @Security     Bearer
// @Produce      json
// @Param        kind             query  string  false  "consignment | agent"
// @Param        counterparty_id  query  string  false  "Cliente o agente"
// @Param        status           query  string  false  "draft | active | closed"
// @Success      200  {object}  dto.Result
// @Router       /api/aggregates [get]
func (h *AggregateHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), repository.AggregateFilter{
		Kind:           entity.AggregateKind(c.Query("kind")),
		CounterpartyID: c.Query("counterparty_id"),
		Status:         entity.AggregateStatus(c.Query("status")),
	})
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromAggregates(list), nil)
}

// AddItems godoc
// @Summary      Entregar más unidades
// @Tags         aggregates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del documento"
// @Param        body  body  dto.AddItemsRequest  true  "Lotes y cantidades"
// @Success      200   {object}  dto.Result
// @Router       /api/aggregates/{id}/items [post]
func (h *AggregateHandler) AddItems(c *fiber.Ctx) error {
	var in dto.AddItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	agg, err := h.uc.AddItems(c.UserContext(), GetActorID(c), c.Params("id"), in)
	return h.result(c, agg, err)
}

// RecordSale godoc
// @Summary      Registrar venta de unidades en poder de la contraparte
// @Tags         aggregates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del documento"
// @Param        body  body  dto.SaleItemsRequest  true  "Lotes y cantidades vendidas"
// @Success      200   {object}  dto.Result
// @Router       /api/aggregates/{id}/sales [post]
func (h *AggregateHandler) RecordSale(c *fiber.Ctx) error {
	var in dto.SaleItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	agg, err := h.uc.RecordSale(c.UserContext(), GetActorID(c), c.Params("id"), in)
	return h.result(c, agg, err)
}

// ReturnItems godoc
// @Summary      Registrar devolución
// @Tags         aggregates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del documento"
// @Param        body  body  dto.SaleItemsRequest  true  "Lotes y cantidades devueltas"
// @Success      200   {object}  dto.Result
// @Router       /api/aggregates/{id}/returns [post]
func (h *AggregateHandler) ReturnItems(c *fiber.Ctx) error {
	var in dto.SaleItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	agg, err := h.uc.ReturnItems(c.UserContext(), GetActorID(c), c.Params("id"), in)
	return h.result(c, agg, err)
}

// RecordPayment godoc
// @Summary      Registrar abono
// @Tags         aggregates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del documento"
// @Param        body  body  dto.PaymentRequest  true  "Monto y medio de pago"
// @Success      200   {object}  dto.Result
// @Router       /api/aggregates/{id}/payments [post]
func (h *AggregateHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	agg, err := h.uc.RecordPayment(c.UserContext(), GetActorID(c), c.Params("id"), in)
	return h.result(c, agg, err)
}

// EditSold godoc
// @Summary      Corregir cantidad vendida de una línea
// @Tags         aggregates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                   true  "ID del documento"
// @Param        lineId  path  string                   true  "ID de la línea"
// @Param        body    body  dto.EditQuantityRequest  true  "Nueva cantidad vendida"
// @Success      200     {object}  dto.Result
// @Router       /api/aggregates/{id}/lines/{lineId}/sold [put]
func (h *AggregateHandler) EditSold(c *fiber.Ctx) error {
	var in dto.EditQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	agg, err := h.uc.EditSaleQuantity(c.UserContext(), GetActorID(c), c.Params("id"), c.Params("lineId"), in)
	return h.result(c, agg, err)
}

// Close godoc
// @Summary      Cerrar documento
// @Tags         aggregates
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.Result
// @Failure      422  {object}  dto.Result
// @Router       /api/aggregates/{id}/close [post]
func (h *AggregateHandler) Close(c *fiber.Ctx) error {
	agg, err := h.uc.Close(c.UserContext(), GetActorID(c), c.Params("id"))
	return h.result(c, agg, err)
}

// Payments godoc
// @Summary      Abonos del documento
// @Tags         aggregates
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.Result
// @Router       /api/aggregates/{id}/payments [get]
func (h *AggregateHandler) Payments(c *fiber.Ctx) error {
	list, err := h.uc.Payments(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromPayments(list), nil)
}

func (h *AggregateHandler) result(c *fiber.Ctx, agg *entity.Aggregate, err error) error {
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromAggregate(agg), nil)
}
