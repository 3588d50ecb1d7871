package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductValuation valor del inventario restante de un producto.
type ProductValuation struct {
	ProductID         string
	CategoryID        string
	RemainingQuantity int64
	AveragedUnitValue decimal.Decimal
	TotalValue        decimal.Decimal
	Policy            Policy
}

// CategoryValuation agregación por categoría (suma de ProductValuation).
type CategoryValuation struct {
	CategoryID        string
	Products          int
	RemainingQuantity int64
	TotalValue        decimal.Decimal
	Policy            Policy
}

// ValueProduct valoriza los lotes sin consumir de un producto. Es pura: no modifica lots.
// FIFO y LIFO valoran cada lote a su propio costo (tras ventas FIFO quedan los lotes más
// nuevos; tras ventas LIFO, los más antiguos). AVERAGE usa cantidad total * promedio ponderado.
func ValueProduct(policy Policy, productID, categoryID string, lots []entity.Lot) (ProductValuation, error) {
	out := ProductValuation{
		ProductID:         productID,
		CategoryID:        categoryID,
		Policy:            policy,
		AveragedUnitValue: decimal.Zero,
		TotalValue:        decimal.Zero,
	}
	layered, qty := RemainingValue(lots)
	out.RemainingQuantity = qty

	switch policy {
	case PolicyFIFO, PolicyLIFO:
		out.TotalValue = roundMoney(layered)
	case PolicyAverage:
		out.TotalValue = AverageCost(lots, qty)
	default:
		return ProductValuation{}, domain.ErrUnknownPolicy
	}
	if qty > 0 {
		out.AveragedUnitValue = out.TotalValue.DivRound(decimal.NewFromInt(qty), UnitCostPlaces)
	}
	return out, nil
}

// AggregateByCategory agrupa por CategoryID; ordenado por CategoryID.
func AggregateByCategory(vals []ProductValuation) []CategoryValuation {
	idx := make(map[string]int)
	out := make([]CategoryValuation, 0)
	for _, v := range vals {
		i, ok := idx[v.CategoryID]
		if !ok {
			i = len(out)
			idx[v.CategoryID] = i
			out = append(out, CategoryValuation{CategoryID: v.CategoryID, TotalValue: decimal.Zero, Policy: v.Policy})
		}
		out[i].Products++
		out[i].RemainingQuantity += v.RemainingQuantity
		out[i].TotalValue = out[i].TotalValue.Add(v.TotalValue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out
}
