package inventory

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/rs/zerolog"
)

// PolicySwitch expone la política de costeo vigente por empresa. Se inyecta en el motor de
// asignación y en la valorización; no hay estado global.
type PolicySwitch struct {
	settings  repository.SettingsRepository
	cache     ValuationCache
	log       zerolog.Logger
	defaulted atomic.Int64
}

// NewPolicySwitch construye el switch de política.
func NewPolicySwitch(settings repository.SettingsRepository, cache ValuationCache, log zerolog.Logger) *PolicySwitch {
	return &PolicySwitch{settings: settings, cache: cache, log: log}
}

// PolicyState política vigente con su auditoría. Defaulted = la empresa no la configuró.
type PolicyState struct {
	Policy    inventory.Policy
	Defaulted bool
	UpdatedBy string
	UpdatedAt time.Time
}

// Get devuelve la política de la empresa. Sin configuración devuelve FIFO y lo registra
// (WARN + contador DefaultedReads). Un valor almacenado no reconocido es ErrUnknownPolicy.
func (s *PolicySwitch) Get(ctx context.Context, companyID string) (inventory.Policy, error) {
	st, err := s.Current(ctx, companyID)
	if err != nil {
		return 0, err
	}
	return st.Policy, nil
}

// Current igual que Get pero con quién y cuándo la cambió.
func (s *PolicySwitch) Current(ctx context.Context, companyID string) (PolicyState, error) {
	if companyID == "" {
		return PolicyState{}, domain.ErrInvalidInput
	}
	setting, err := s.settings.GetCostingSetting(ctx, companyID)
	if err != nil {
		return PolicyState{}, fmt.Errorf("leer política de costeo: %w", err)
	}
	if setting == nil {
		s.defaulted.Add(1)
		s.log.Warn().
			Str("company_id", companyID).
			Str("policy", inventory.DefaultPolicy.String()).
			Msg("política de costeo no configurada, se usa el valor por defecto")
		return PolicyState{Policy: inventory.DefaultPolicy, Defaulted: true}, nil
	}
	p, err := inventory.ParsePolicy(setting.Policy)
	if err != nil {
		s.log.Error().
			Str("company_id", companyID).
			Str("stored_policy", setting.Policy).
			Msg("política de costeo almacenada no reconocida")
		return PolicyState{}, err
	}
	return PolicyState{Policy: p, UpdatedBy: setting.UpdatedBy, UpdatedAt: setting.UpdatedAt}, nil
}

// Set cambia la política de la empresa con efecto inmediato. No afecta ventas ya registradas.
func (s *PolicySwitch) Set(ctx context.Context, companyID, raw, actorID string) (inventory.Policy, error) {
	if companyID == "" {
		return 0, domain.ErrInvalidInput
	}
	p, err := inventory.ParsePolicy(raw)
	if err != nil {
		return 0, err
	}
	previous := "unset"
	if current, err := s.settings.GetCostingSetting(ctx, companyID); err == nil && current != nil {
		previous = current.Policy
	}
	setting := &entity.CostingSetting{
		CompanyID: companyID,
		Policy:    p.String(),
		UpdatedBy: actorID,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.settings.UpsertCostingSetting(ctx, setting); err != nil {
		return 0, fmt.Errorf("guardar política de costeo: %w", err)
	}
	s.log.Info().
		Str("company_id", companyID).
		Str("from", previous).
		Str("to", p.String()).
		Str("actor", actorID).
		Msg("política de costeo actualizada")
	invalidate(ctx, s.cache, s.log, companyID)
	return p, nil
}

// DefaultedReads número de lecturas resueltas con la política por defecto.
func (s *PolicySwitch) DefaultedReads() int64 {
	return s.defaulted.Load()
}

// invalidate incrementa la generación de cache; un fallo solo se registra.
func invalidate(ctx context.Context, cache ValuationCache, log zerolog.Logger, companyID string) {
	if cache == nil {
		return
	}
	if err := cache.Bump(ctx, companyID); err != nil {
		log.Warn().Err(err).Str("company_id", companyID).Msg("no se pudo invalidar cache de valorización")
	}
}
