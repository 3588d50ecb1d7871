package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo política de costeo por empresa.
type SettingsRepo struct {
	q Querier
}

func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// GetCostingSetting nil, nil si la empresa no tiene fila.
func (r *SettingsRepo) GetCostingSetting(ctx context.Context, companyID string) (*entity.CostingSetting, error) {
	var s entity.CostingSetting
	err := r.q.QueryRow(ctx, `
		SELECT company_id, policy, COALESCE(updated_by, ''), updated_at
		FROM costing_settings WHERE company_id = $1`, companyID,
	).Scan(&s.CompanyID, &s.Policy, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get costing setting: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepo) UpsertCostingSetting(ctx context.Context, s *entity.CostingSetting) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO costing_settings (company_id, policy, updated_by, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (company_id)
		DO UPDATE SET policy = EXCLUDED.policy, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		s.CompanyID, s.Policy, s.UpdatedBy, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert costing setting: %w", err)
	}
	return nil
}
