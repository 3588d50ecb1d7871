package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ValuationUseCase calcula bajo demanda el valor del inventario restante. Solo lectura:
// usa una transacción read-only y nunca descuenta lotes.
type ValuationUseCase struct {
	txRunner TxRunner
	policy   *PolicySwitch
	cache    ValuationCache
	cacheTTL time.Duration
	log      zerolog.Logger
	group    singleflight.Group
}

// NewValuationUseCase construye el caso de uso. cacheTTL <= 0 desactiva el cache.
func NewValuationUseCase(txRunner TxRunner, policy *PolicySwitch, cache ValuationCache, cacheTTL time.Duration, log zerolog.Logger) *ValuationUseCase {
	return &ValuationUseCase{txRunner: txRunner, policy: policy, cache: cache, cacheTTL: cacheTTL, log: log}
}

// ValuationFilter alcance de la valorización: un producto, una categoría o toda la empresa.
type ValuationFilter struct {
	CompanyID  string
	ProductID  string
	CategoryID string
}

func (f ValuationFilter) scope() string {
	switch {
	case f.ProductID != "":
		return "product:" + f.ProductID
	case f.CategoryID != "":
		return "category:" + f.CategoryID
	default:
		return "all"
	}
}

// Valuation devuelve una fila por producto con unidades restantes (lista vacía si no hay stock),
// ordenada por ProductID.
func (uc *ValuationUseCase) Valuation(ctx context.Context, f ValuationFilter) ([]inventory.ProductValuation, error) {
	if f.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	policy, err := uc.policy.Get(ctx, f.CompanyID)
	if err != nil {
		return nil, err
	}

	key, cacheable := uc.cacheKey(ctx, f, policy)
	if cacheable {
		if cached, ok, err := uc.cache.Get(ctx, key); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("lectura de cache de valorización")
		} else if ok {
			return cached, nil
		}
	}

	if !cacheable {
		return uc.compute(ctx, f, policy)
	}
	// Lecturas concurrentes de la misma generación comparten un único cálculo.
	v, err, _ := uc.group.Do(key, func() (any, error) {
		out, err := uc.compute(ctx, f, policy)
		if err != nil {
			return nil, err
		}
		if err := uc.cache.Set(ctx, key, out, uc.cacheTTL); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("escritura de cache de valorización")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	shared := v.([]inventory.ProductValuation)
	out := make([]inventory.ProductValuation, len(shared))
	copy(out, shared)
	return out, nil
}

func (uc *ValuationUseCase) compute(ctx context.Context, f ValuationFilter, policy inventory.Policy) ([]inventory.ProductValuation, error) {
	out := make([]inventory.ProductValuation, 0)
	err := uc.txRunner.RunReadOnly(ctx, func(lotRepo repository.LotRepository, productRepo repository.ProductRepository) error {
		products, err := productRepo.ListForValuation(ctx, f.CompanyID, f.ProductID, f.CategoryID)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		ids := make([]string, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		lotsByProduct, err := lotRepo.ListUnconsumedByProducts(ctx, ids)
		if err != nil {
			return err
		}
		for _, p := range products {
			v, err := inventory.ValueProduct(policy, p.ID, p.CategoryID, lotsByProduct[p.ID])
			if err != nil {
				return err
			}
			if v.RemainingQuantity == 0 {
				continue
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("valorización: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ByCategory agrega la valorización de la empresa por categoría.
func (uc *ValuationUseCase) ByCategory(ctx context.Context, companyID string) ([]inventory.CategoryValuation, error) {
	vals, err := uc.Valuation(ctx, ValuationFilter{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return inventory.AggregateByCategory(vals), nil
}

func (uc *ValuationUseCase) cacheKey(ctx context.Context, f ValuationFilter, policy inventory.Policy) (string, bool) {
	if uc.cache == nil || uc.cacheTTL <= 0 {
		return "", false
	}
	gen, err := uc.cache.Generation(ctx, f.CompanyID)
	if err != nil {
		uc.log.Warn().Err(err).Str("company_id", f.CompanyID).Msg("generación de cache de valorización")
		return "", false
	}
	return fmt.Sprintf("valuation:%s:%d:%s:%s", f.CompanyID, gen, policy, f.scope()), true
}
