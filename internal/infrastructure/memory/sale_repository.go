package memory

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria.
type SaleRepo struct {
	b binding
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		st.sales[sale.ID] = cloneSale(*sale)
		return nil
	})
}

// GetByID devuelve nil, nil si no existe.
func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.b.read(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			c := cloneSale(s)
			out = &c
		}
		return nil
	})
	return out, err
}
