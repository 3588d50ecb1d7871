package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	b binding
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, p := range st.products {
			if p.CompanyID == product.CompanyID && p.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[product.ID] = *product
		return nil
	})
}

// GetByID devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de Run el almacén ya está bloqueado en exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.b.readOnly {
		return nil, ErrReadOnly
	}
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.read(func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID == companyID && p.SKU == sku {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

// AdjustStock suma delta; nunca deja el stock negativo.
func (r *ProductRepo) AdjustStock(_ context.Context, productID string, delta int64) error {
	return r.b.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrProductNotFound
		}
		if p.Stock+delta < 0 {
			return domain.ErrInsufficientStock
		}
		p.Stock += delta
		p.UpdatedAt = time.Now().UTC()
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	return r.b.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.Cost = cost
		p.UpdatedAt = time.Now().UTC()
		st.products[productID] = p
		return nil
	})
}

// ListByCompany más reciente primero.
func (r *ProductRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	list := make([]entity.Product, 0)
	err := r.b.read(func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID == companyID {
				list = append(list, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return toPointers(paginate(list, limit, offset)), nil
}

func (r *ProductRepo) ListForValuation(_ context.Context, companyID, productID, categoryID string) ([]*entity.Product, error) {
	list := make([]entity.Product, 0)
	err := r.b.read(func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID != companyID {
				continue
			}
			if productID != "" && p.ID != productID {
				continue
			}
			if categoryID != "" && p.CategoryID != categoryID {
				continue
			}
			list = append(list, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return toPointers(list), nil
}

func toPointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
