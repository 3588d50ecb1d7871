package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// LotOrder orden de recorrido de los lotes sin consumir.
type LotOrder uint8

const (
	OrderOldestFirst LotOrder = iota + 1 // ReceivedAt ascendente
	OrderNewestFirst                     // ReceivedAt descendente
)

// OrderFor devuelve el orden de consumo de la política.
// AVERAGE agota lotes en orden FIFO: solo el costo depende de la política.
func OrderFor(p Policy) (LotOrder, error) {
	switch p {
	case PolicyFIFO, PolicyAverage:
		return OrderOldestFirst, nil
	case PolicyLIFO:
		return OrderNewestFirst, nil
	default:
		return 0, domain.ErrUnknownPolicy
	}
}

// SortLots ordena in-place según order. Con igual ReceivedAt desempata por ID ascendente
// en ambos órdenes, para que la asignación sea reproducible sin importar la resolución del reloj.
func SortLots(lots []entity.Lot, order LotOrder) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			if order == OrderNewestFirst {
				return a.ReceivedAt.After(b.ReceivedAt)
			}
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.ID < b.ID
	})
}

// Unconsumed filtra los lotes con RemainingQuantity > 0 (copia).
func Unconsumed(lots []entity.Lot) []entity.Lot {
	out := make([]entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.RemainingQuantity > 0 {
			out = append(out, l)
		}
	}
	return out
}
