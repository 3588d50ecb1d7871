package inventory

import (
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Precisión de los resultados monetarios.
const (
	MoneyPlaces    int32 = 2 // unidad mínima de moneda
	UnitCostPlaces int32 = 4 // costo unitario derivado
)

// MaxUnitCost cota exclusiva de un costo unitario (NUMERIC(18,4): 14 dígitos enteros).
var MaxUnitCost = decimal.New(1, 14)

// ValidUnitCost indica si el costo es no negativo, menor que MaxUnitCost y sin más de
// UnitCostPlaces decimales significativos.
func ValidUnitCost(cost decimal.Decimal) bool {
	if cost.IsNegative() || cost.GreaterThanOrEqual(MaxUnitCost) {
		return false
	}
	return cost.Equal(cost.Truncate(UnitCostPlaces))
}

// RemainingValue suma RemainingQuantity * UnitCost de los lotes (sin redondeo).
func RemainingValue(lots []entity.Lot) (decimal.Decimal, int64) {
	value := decimal.Zero
	var qty int64
	for _, l := range lots {
		if l.RemainingQuantity <= 0 {
			continue
		}
		qty += l.RemainingQuantity
		value = value.Add(decimal.NewFromInt(l.RemainingQuantity).Mul(l.UnitCost))
	}
	return value, qty
}

// AverageCost costo de quantity unidades al promedio ponderado sobre las capas sin consumir,
// redondeado half-up a 2 decimales. Promedio = Σ(RemainingQuantity_i * UnitCost_i) / Σ RemainingQuantity_i.
// Se calcula como Σ(rem·costo)·quantity / Σrem con una sola división, sin redondear el promedio.
func AverageCost(lots []entity.Lot, quantity int64) decimal.Decimal {
	value, qty := RemainingValue(lots)
	if qty <= 0 {
		return decimal.Zero
	}
	return value.Mul(decimal.NewFromInt(quantity)).DivRound(decimal.NewFromInt(qty), MoneyPlaces)
}

// roundMoney redondea half-up a la unidad mínima de moneda (valores no negativos).
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
