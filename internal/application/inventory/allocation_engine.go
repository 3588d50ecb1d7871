package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/rs/zerolog"
)

// AllocationEngine asigna cantidades vendidas a lotes según la política vigente.
type AllocationEngine struct {
	txRunner TxRunner
	policy   *PolicySwitch
	cache    ValuationCache
	log      zerolog.Logger
}

// NewAllocationEngine construye el motor de asignación.
func NewAllocationEngine(txRunner TxRunner, policy *PolicySwitch, cache ValuationCache, log zerolog.Logger) *AllocationEngine {
	return &AllocationEngine{txRunner: txRunner, policy: policy, cache: cache, log: log}
}

// AllocateInTx recorre los lotes sin consumir bloqueándolos (SELECT FOR UPDATE), calcula la
// asignación y descuenta RemainingQuantity de cada lote consumido. Se ejecuta dentro de la
// transacción del llamador (registro de venta): si algo falla después, el rollback del
// llamador deshace todos los descuentos. No modifica el stock del producto.
func (e *AllocationEngine) AllocateInTx(
	ctx context.Context,
	lotRepo repository.LotRepository,
	productID string,
	quantity int64,
	policy inventory.Policy,
) (*inventory.Allocation, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	order, err := inventory.OrderFor(policy)
	if err != nil {
		return nil, err
	}
	lots, err := lotRepo.ListUnconsumedForUpdate(ctx, productID, order)
	if err != nil {
		return nil, err
	}
	alloc, err := inventory.PlanAllocation(policy, productID, lots, quantity)
	if err != nil {
		var drift *domain.LedgerDriftError
		if errors.As(err, &drift) {
			e.log.Error().
				Str("product_id", drift.ProductID).
				Int64("requested", drift.Requested).
				Int64("available", drift.Available).
				Msg("divergencia entre stock y libro de lotes")
		}
		return nil, err
	}
	for _, c := range alloc.Consumptions {
		if err := lotRepo.DecrementRemaining(ctx, c.LotID, c.Quantity); err != nil {
			return nil, err
		}
	}
	return alloc, nil
}

// Allocate asigna una cantidad de forma autónoma: bloquea el producto, verifica stock,
// consume lotes y descuenta el stock en una sola transacción. Para ventas con registro
// usar RecordSaleUseCase.
func (e *AllocationEngine) Allocate(ctx context.Context, companyID, productID string, quantity int64) (*inventory.Allocation, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	policy, err := e.policy.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var alloc *inventory.Allocation
	err = e.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil || product.CompanyID != companyID {
			return domain.ErrProductNotFound
		}
		if product.Stock < quantity {
			return domain.ErrInsufficientStock
		}
		alloc, err = e.AllocateInTx(ctx, lotRepo, productID, quantity, policy)
		if err != nil {
			return err
		}
		return productRepo.AdjustStock(ctx, productID, -quantity)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, e.cache, e.log, companyID)
	return alloc, nil
}
