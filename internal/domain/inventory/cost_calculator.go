package inventory

import "github.com/shopspring/decimal"

// CostCalculator costo promedio ponderado del lote tras una entrada, redondeado como
// todo monto persistido:
// nuevo = (existencia*costo + entrada*costoEntrada) / (existencia + entrada)
func CostCalculator(onHand int64, cost decimal.Decimal, received int64, receivedCost decimal.Decimal) decimal.Decimal {
	total := onHand + received
	if total <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(onHand).Mul(cost).Add(decimal.NewFromInt(received).Mul(receivedCost))
	return Money(num.Div(decimal.NewFromInt(total)))
}
