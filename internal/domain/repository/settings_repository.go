package repository

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// SettingsRepository guarda la política de costeo por empresa. GetCostingSetting devuelve
// nil, nil si la empresa no tiene configuración.
type SettingsRepository interface {
	GetCostingSetting(ctx context.Context, companyID string) (*entity.CostingSetting, error)
	UpsertCostingSetting(ctx context.Context, setting *entity.CostingSetting) error
}
