package memory

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo política de costeo por empresa en memoria.
type SettingsRepo struct {
	b binding
}

func (r *SettingsRepo) GetCostingSetting(_ context.Context, companyID string) (*entity.CostingSetting, error) {
	var out *entity.CostingSetting
	err := r.b.read(func(st *state) error {
		if s, ok := st.settings[companyID]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SettingsRepo) UpsertCostingSetting(_ context.Context, setting *entity.CostingSetting) error {
	return r.b.write(func(st *state) error {
		st.settings[setting.CompanyID] = *setting
		return nil
	})
}
