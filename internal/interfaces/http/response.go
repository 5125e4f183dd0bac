package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// StatusFor código HTTP de cada ErrorKind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput, domain.KindInvalidQuantity:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConcurrentModification, domain.KindAggregateClosed:
		return fiber.StatusConflict
	case domain.KindInsufficientStock, domain.KindNegativeBalance,
		domain.KindOutstandingBalance, domain.KindInvalidState:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusServiceUnavailable
	}
}

// responder escribe el sobre dto.Result; las fallas de almacenamiento se registran.
type responder struct {
	log *logger.Logger
}

func (r responder) send(c *fiber.Ctx, status int, data any, err error) error {
	res := dto.NewResult(data, err)
	if res.Success {
		return c.Status(status).JSON(res)
	}
	if res.ErrorKind == domain.KindStorageUnavailable && r.log != nil {
		r.log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("almacenamiento no disponible")
	}
	return c.Status(StatusFor(res.ErrorKind)).JSON(res)
}

func (r responder) badBody(c *fiber.Ctx) error {
	return r.send(c, 0, nil, fmt.Errorf("cuerpo inválido: %w", domain.ErrInvalidInput))
}

// parseTime acepta RFC3339 o AAAA-MM-DD; vacío devuelve nil.
func parseTime(s string) (*time.Time, error) {
	t, _, err := parseDate(s)
	return t, err
}

// parseUntil límite superior inclusivo: una fecha sin hora cubre el día completo.
func parseUntil(s string) (*time.Time, error) {
	t, dateOnly, err := parseDate(s)
	if err != nil || t == nil || !dateOnly {
		return t, err
	}
	end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &end, nil
}

func parseDate(s string) (*time.Time, bool, error) {
	if s == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, false, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, true, nil
	}
	return nil, false, fmt.Errorf("fecha %q: %w", s, domain.ErrInvalidInput)
}

func pageFrom(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultLimit), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	return page
}
