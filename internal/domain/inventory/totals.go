package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// TotalsLine par cantidad x precio unitario de un documento.
type TotalsLine struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Totals totales monetarios de un documento.
type Totals struct {
	TotalAmount decimal.Decimal
	TotalPaid   decimal.Decimal
	BalanceDue  decimal.Decimal
}

// MoneyPlaces decimales de todo monto persistido (NUMERIC(18,2)).
const MoneyPlaces int32 = 2

// Money redondea un monto a MoneyPlaces. Precios y abonos pasan por aquí al entrar al
// motor, así ambos almacenamientos valoran igual.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// LineTotal cantidad x precio, redondeado a 2 decimales.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return Money(decimal.NewFromInt(quantity).Mul(unitPrice))
}

// Recalculate función pura: total, pagado y saldo a partir de líneas y abonos.
// Llamarla dos veces con la misma entrada produce la misma salida.
func Recalculate(lines []TotalsLine, payments []decimal.Decimal) Totals {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p)
	}
	paid = paid.Round(2)
	return Totals{
		TotalAmount: total,
		TotalPaid:   paid,
		BalanceDue:  total.Sub(paid),
	}
}

// RecalculateSale actualiza los totales de línea y el total de la venta.
func RecalculateSale(sale *entity.Sale) {
	lines := make([]TotalsLine, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		l.LineTotal = LineTotal(l.Quantity, l.UnitPrice)
		lines = append(lines, TotalsLine{Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	sale.Total = Recalculate(lines, nil).TotalAmount
}

// RecalculateAggregate actualiza saldos y valoración de las líneas y los acumulados
// de la cabecera. sale es la venta asociada al documento (nil si aún no hay ventas).
func RecalculateAggregate(agg *entity.Aggregate, sale *entity.Sale, payments []decimal.Decimal) Totals {
	value := decimal.Zero
	for _, l := range agg.Lines {
		l.CurrentBalance = l.Balance()
		l.TotalValue = LineTotal(l.CurrentBalance, l.UnitPrice)
		value = value.Add(l.TotalValue)
	}
	var lines []TotalsLine
	if sale != nil {
		for _, l := range sale.Lines {
			lines = append(lines, TotalsLine{Quantity: l.Quantity, UnitPrice: l.UnitPrice})
		}
	}
	totals := Recalculate(lines, payments)
	agg.TotalValue = value
	agg.TotalSold = totals.TotalAmount
	agg.TotalPaid = totals.TotalPaid
	agg.BalanceDue = totals.BalanceDue
	return totals
}

// PaymentStatus deriva el estado de pago a partir de los totales.
func PaymentStatus(t Totals) string {
	switch {
	case t.TotalPaid.IsZero():
		return entity.PaymentStatusUnpaid
	case t.BalanceDue.LessThanOrEqual(decimal.Zero):
		return entity.PaymentStatusPaid
	default:
		return entity.PaymentStatusPartial
	}
}
