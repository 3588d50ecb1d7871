package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo libro de lotes en memoria.
type LotRepo struct {
	b binding
}

// Create asigna el siguiente ID secuencial e inserta el lote.
func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.products[lot.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		st.lotSeq++
		lot.ID = st.lotSeq
		st.lots[lot.ID] = *lot
		return nil
	})
}

// GetByID devuelve nil, nil si no existe.
func (r *LotRepo) GetByID(_ context.Context, id int64) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.b.read(func(st *state) error {
		if l, ok := st.lots[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *LotRepo) ListUnconsumed(_ context.Context, productID string, order inventory.LotOrder) ([]entity.Lot, error) {
	var out []entity.Lot
	err := r.b.read(func(st *state) error {
		out = unconsumed(st, productID, order)
		return nil
	})
	return out, err
}

// ListUnconsumedForUpdate dentro de Run el lock exclusivo del almacén ya serializa escritores.
func (r *LotRepo) ListUnconsumedForUpdate(ctx context.Context, productID string, order inventory.LotOrder) ([]entity.Lot, error) {
	if r.b.readOnly {
		return nil, ErrReadOnly
	}
	return r.ListUnconsumed(ctx, productID, order)
}

func unconsumed(st *state, productID string, order inventory.LotOrder) []entity.Lot {
	out := make([]entity.Lot, 0)
	for _, l := range st.lots {
		if l.ProductID == productID && l.RemainingQuantity > 0 {
			out = append(out, l)
		}
	}
	inventory.SortLots(out, order)
	return out
}

// DecrementRemaining verifica y descuenta en la misma sección crítica.
func (r *LotRepo) DecrementRemaining(_ context.Context, lotID int64, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidQuantity
	}
	return r.b.write(func(st *state) error {
		l, ok := st.lots[lotID]
		if !ok {
			return domain.ErrNotFound
		}
		if amount > l.RemainingQuantity {
			return domain.ErrInsufficientLotQuantity
		}
		l.RemainingQuantity -= amount
		st.lots[lotID] = l
		return nil
	})
}

// ListByProduct historial completo, más reciente primero.
func (r *LotRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]entity.Lot, error) {
	out := make([]entity.Lot, 0)
	err := r.b.read(func(st *state) error {
		for _, l := range st.lots {
			if l.ProductID == productID {
				out = append(out, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.After(out[j].ReceivedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, limit, offset), nil
}

func (r *LotRepo) ListUnconsumedByProducts(_ context.Context, productIDs []string) (map[string][]entity.Lot, error) {
	out := make(map[string][]entity.Lot, len(productIDs))
	err := r.b.read(func(st *state) error {
		for _, id := range productIDs {
			out[id] = unconsumed(st, id, inventory.OrderOldestFirst)
		}
		return nil
	})
	return out, err
}

func (r *LotRepo) SumRemaining(_ context.Context, productID string) (int64, error) {
	var sum int64
	err := r.b.read(func(st *state) error {
		for _, l := range st.lots {
			if l.ProductID == productID {
				sum += l.RemainingQuantity
			}
		}
		return nil
	})
	return sum, err
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
