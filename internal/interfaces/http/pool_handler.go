package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// PoolHandler pools de stock y su libro de movimientos (protegido).
type PoolHandler struct {
	responder
	uc *inventory.PoolUseCase
}

// NewPoolHandler construye el handler.
func NewPoolHandler(uc *inventory.PoolUseCase, log *logger.Logger) *PoolHandler {
	return &PoolHandler{responder: responder{log: log}, uc: uc}
}

// Create godoc
// @Summary      Crear pool de un lote en una bodega
// @Tags         pools
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePoolRequest  true  "Lote, bodega y cantidad inicial"
// @Success      201   {object}  dto.Result
// @Failure      400   {object}  dto.Result
// @Router       /api/pools [post]
func (h *PoolHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePoolRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	pool, err := h.uc.CreatePool(c.UserContext(), GetActorID(c), in)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusCreated, dto.FromPool(pool), nil)
}

// List godoc
// @Summary      Listar pools de una bodega
// @Tags         pools
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true   "Bodega"
// @Param        product_id   query  string  false  "Producto"
// @Success      200  {object}  dto.Result
// @Router       /api/pools [get]
func (h *PoolHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListPools(c.UserContext(), c.Query("location_id"), c.Query("product_id"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromPools(list), nil)
}

// GetByID godoc
// @Summary      Obtener pool por ID
// @Tags         pools
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pool"
// @Success      200  {object}  dto.Result
// @Failure      404  {object}  dto.Result
// @Router       /api/pools/{id} [get]
func (h *PoolHandler) GetByID(c *fiber.Ctx) error {
	pool, err := h.uc.GetPool(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromPool(pool), nil)
}

// Receive godoc
// @Summary      Registrar entrada de mercancía
// @Tags         pools
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del pool"
// @Param        body  body  dto.ReceiveRequest  true  "Cantidad y precio de compra"
// @Success      200   {object}  dto.Result
// @Router       /api/pools/{id}/receive [post]
func (h *PoolHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	pool, err := h.uc.Receive(c.UserContext(), GetActorID(c), c.Params("id"), in)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromPool(pool), nil)
}

// Hold godoc
// @Summary      Trasladar del disponible a consignado o asignado
// @Tags         pools
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID del pool"
// @Param        body  body  dto.HoldRequest  true  "Campo destino y cantidad"
// @Success      200   {object}  dto.Result
// @Failure      422   {object}  dto.Result
// @Router       /api/pools/{id}/hold [post]
func (h *PoolHandler) Hold(c *fiber.Ctx) error {
	var in dto.HoldRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	pool, err := h.uc.Hold(c.UserContext(), GetActorID(c), c.Params("id"), in)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromPool(pool), nil)
}

// Adjust godoc
// @Summary      Ajuste por conteo físico
// @Tags         pools
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del pool"
// @Param        body  body  dto.AdjustRequest  true  "Campo, delta y observación"
// @Success      200   {object}  dto.Result
// @Failure      422   {object}  dto.Result
// @Router       /api/pools/{id}/adjust [post]
func (h *PoolHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	pool, err := h.uc.AdjustStock(c.UserContext(), GetActorID(c), c.Params("id"), in)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromPool(pool), nil)
}

// Transfer godoc
// @Summary      Traslado entre bodegas
// @Tags         pools
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del pool de origen"
// @Param        body  body  dto.TransferRequest  true  "Bodega destino y cantidad"
// @Success      200   {object}  dto.Result
// @Router       /api/pools/{id}/transfer [post]
func (h *PoolHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return h.badBody(c)
	}
	out, err := h.uc.TransferBetweenLocations(c.UserContext(), GetActorID(c), c.Params("id"), in)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, fiber.Map{
		"from": dto.FromPool(out.From),
		"to":   dto.FromPool(out.To),
	}, nil)
}

// Movements godoc
// @Summary      Libro de movimientos de un pool
// @Tags         pools
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del pool"
// @Param        from  query  string  false  "Desde (RFC3339 o AAAA-MM-DD)"
// @Param        to    query  string  false  "Hasta (RFC3339 o AAAA-MM-DD)"
// @Success      200   {object}  dto.Result
// @Router       /api/pools/{id}/movements [get]
func (h *PoolHandler) Movements(c *fiber.Ctx) error {
	from, err := parseTime(c.Query("from"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	to, err := parseUntil(c.Query("to"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	list, err := h.uc.ListMovements(c.UserContext(), c.Params("id"), from, to)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromMovements(list), nil)
}

// StockCard godoc
// @Summary      Kardex de un pool
// @Tags         pools
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del pool"
// @Param        from  query  string  false  "Desde; por defecto hace 30 días"
// @Param        to    query  string  false  "Hasta; por defecto ahora"
// @Success      200   {object}  dto.Result
// @Router       /api/pools/{id}/stock-card [get]
func (h *PoolHandler) StockCard(c *fiber.Ctx) error {
	now := time.Now().UTC()
	from, err := parseTime(c.Query("from"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	to, err := parseUntil(c.Query("to"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	if to == nil {
		to = &now
	}
	if from == nil {
		start := to.AddDate(0, 0, -30)
		from = &start
	}
	card, err := h.uc.StockCard(c.UserContext(), c.Params("id"), *from, *to)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.StockCardResponse{
		PoolID:               card.Pool.ID,
		OpeningRemaining:     card.OpeningRemaining,
		OpeningConsigned:     card.OpeningConsigned,
		OpeningAgentAssigned: card.OpeningAgentAssigned,
		Movements:            dto.FromMovements(card.Movements),
		Pool:                 dto.FromPool(card.Pool),
	}, nil)
}

// Expiring godoc
// @Summary      Pools con existencias que vencen antes de una fecha
// @Tags         pools
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "Bodega"
// @Param        before       query  string  true  "Fecha límite (RFC3339 o AAAA-MM-DD)"
// @Success      200  {object}  dto.Result
// @Router       /api/pools/expiring [get]
func (h *PoolHandler) Expiring(c *fiber.Ctx) error {
	before, err := parseTime(c.Query("before"))
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	if before == nil {
		return h.send(c, 0, nil, fmt.Errorf("before requerido: %w", domain.ErrInvalidInput))
	}
	list, err := h.uc.ExpiringPools(c.UserContext(), c.Query("location_id"), *before)
	if err != nil {
		return h.send(c, 0, nil, err)
	}
	return h.send(c, fiber.StatusOK, dto.FromPools(list), nil)
}
