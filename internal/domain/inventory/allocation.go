package inventory

import (
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LotConsumption consumo de un lote dentro de una asignación.
type LotConsumption struct {
	LotID          int64
	Quantity       int64
	UnitCost       decimal.Decimal // costo del lote
	Cost           decimal.Decimal // Quantity * UnitCost
	RemainingAfter int64
}

// Allocation resultado efímero de asignar una cantidad vendida a los lotes.
type Allocation struct {
	ProductID       string
	Policy          Policy
	Quantity        int64
	TotalCost       decimal.Decimal
	UnitCostForSale decimal.Decimal // TotalCost / Quantity
	Consumptions    []LotConsumption
}

// PlanAllocation calcula qué lotes se consumen y el costo de la venta, sin mutar nada.
//   - FIFO/LIFO: recorre los lotes en el orden de la política, consume min(restante, pendiente)
//     y acumula consumo * costo del lote.
//   - AVERAGE: costo = promedio ponderado de todos los lotes sin consumir * cantidad, redondeado
//     a 2 decimales; el agotamiento de lotes sigue el orden FIFO.
//
// Si la suma de lotes sin consumir no cubre quantity devuelve *domain.LedgerDriftError.
func PlanAllocation(policy Policy, productID string, lots []entity.Lot, quantity int64) (*Allocation, error) {
	order, err := OrderFor(policy)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	ordered := Unconsumed(lots)
	SortLots(ordered, order)

	_, available := RemainingValue(ordered)
	if available < quantity {
		return nil, &domain.LedgerDriftError{ProductID: productID, Requested: quantity, Available: available}
	}

	alloc := &Allocation{
		ProductID:    productID,
		Policy:       policy,
		Quantity:     quantity,
		Consumptions: make([]LotConsumption, 0, len(ordered)),
	}

	pending := quantity
	layered := decimal.Zero
	for _, lot := range ordered {
		if pending == 0 {
			break
		}
		take := min(lot.RemainingQuantity, pending)
		cost := decimal.NewFromInt(take).Mul(lot.UnitCost)
		layered = layered.Add(cost)
		pending -= take
		alloc.Consumptions = append(alloc.Consumptions, LotConsumption{
			LotID:          lot.ID,
			Quantity:       take,
			UnitCost:       lot.UnitCost,
			Cost:           cost,
			RemainingAfter: lot.RemainingQuantity - take,
		})
	}

	switch policy {
	case PolicyFIFO, PolicyLIFO:
		alloc.TotalCost = layered
	case PolicyAverage:
		alloc.TotalCost = AverageCost(ordered, quantity)
	default:
		return nil, domain.ErrUnknownPolicy
	}
	alloc.UnitCostForSale = alloc.TotalCost.DivRound(decimal.NewFromInt(quantity), UnitCostPlaces)
	return alloc, nil
}
