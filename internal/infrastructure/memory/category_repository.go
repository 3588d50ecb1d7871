package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	b binding
}

func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	return r.b.write(func(st *state) error {
		for _, c := range st.categories {
			if c.ID == category.ID || (c.CompanyID == category.CompanyID && c.Code == category.Code) {
				return domain.ErrDuplicate
			}
		}
		st.categories[category.ID] = *category
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.b.read(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetByCompanyAndCode(_ context.Context, companyID, code string) (*entity.Category, error) {
	var out *entity.Category
	err := r.b.read(func(st *state) error {
		for _, c := range st.categories {
			if c.CompanyID == companyID && c.Code == code {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ListByCompany ordenado por nombre.
func (r *CategoryRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Category, error) {
	list := make([]entity.Category, 0)
	err := r.b.read(func(st *state) error {
		for _, c := range st.categories {
			if c.CompanyID == companyID {
				list = append(list, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return toPointers(paginate(list, limit, offset)), nil
}
