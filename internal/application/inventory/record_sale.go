package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RecordSaleUseCase registra ventas: asignación a lotes, descuento de stock y registro de la
// venta con su costo base ocurren en una única transacción.
type RecordSaleUseCase struct {
	txRunner TxRunner
	engine   *AllocationEngine
	policy   *PolicySwitch
	saleRepo repository.SaleRepository
	cache    ValuationCache
	log      zerolog.Logger
}

// NewRecordSaleUseCase construye el caso de uso. saleRepo se usa para lecturas fuera de tx.
func NewRecordSaleUseCase(
	txRunner TxRunner,
	engine *AllocationEngine,
	policy *PolicySwitch,
	saleRepo repository.SaleRepository,
	cache ValuationCache,
	log zerolog.Logger,
) *RecordSaleUseCase {
	return &RecordSaleUseCase{
		txRunner: txRunner,
		engine:   engine,
		policy:   policy,
		saleRepo: saleRepo,
		cache:    cache,
		log:      log,
	}
}

// SaleLineInput cantidad vendida de un producto.
type SaleLineInput struct {
	ProductID string
	Quantity  int64
}

// RecordSaleInput entrada de una venta. Líneas repetidas del mismo producto se fusionan.
type RecordSaleInput struct {
	CompanyID string
	ActorID   string
	Reference string
	Lines     []SaleLineInput
}

// mergeLines valida y agrupa cantidades por producto, ordenadas por ProductID.
// Bloquear productos siempre en el mismo orden evita deadlocks entre ventas concurrentes.
func mergeLines(lines []SaleLineInput) ([]SaleLineInput, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	totals := make(map[string]int64, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if l.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		totals[l.ProductID] += l.Quantity
	}
	out := make([]SaleLineInput, 0, len(totals))
	for id, qty := range totals {
		out = append(out, SaleLineInput{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// RecordSale lee la política una vez, bloquea los productos, re-verifica stock, asigna cada
// línea a lotes, descuenta stock y guarda la venta. Cualquier error revierte todo.
func (uc *RecordSaleUseCase) RecordSale(ctx context.Context, in RecordSaleInput) (*entity.Sale, error) {
	if in.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	lines, err := mergeLines(in.Lines)
	if err != nil {
		return nil, err
	}
	policy, err := uc.policy.Get(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sale := &entity.Sale{
		ID:        uuid.New().String(),
		CompanyID: in.CompanyID,
		Reference: in.Reference,
		Policy:    policy.String(),
		TotalCost: decimal.Zero,
		CreatedAt: now,
		CreatedBy: in.ActorID,
	}

	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		sale.Lines = make([]entity.SaleLine, 0, len(lines))
		sale.TotalCost = decimal.Zero

		for _, line := range lines {
			product, err := productRepo.GetForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil || product.CompanyID != in.CompanyID {
				return domain.ErrProductNotFound
			}
			if product.Stock < line.Quantity {
				return domain.ErrInsufficientStock
			}
		}

		for _, line := range lines {
			alloc, err := uc.engine.AllocateInTx(ctx, lotRepo, line.ProductID, line.Quantity, policy)
			if err != nil {
				return err
			}
			if err := productRepo.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
			sl := entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitCost:  alloc.UnitCostForSale,
				TotalCost: alloc.TotalCost,
				Lots:      make([]entity.SaleLineLot, 0, len(alloc.Consumptions)),
			}
			for _, c := range alloc.Consumptions {
				sl.Lots = append(sl.Lots, entity.SaleLineLot{LotID: c.LotID, Quantity: c.Quantity, UnitCost: c.UnitCost})
			}
			sale.Lines = append(sale.Lines, sl)
			sale.TotalCost = sale.TotalCost.Add(alloc.TotalCost)
		}
		return saleRepo.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("company_id", sale.CompanyID).
		Str("policy", sale.Policy).
		Int("lines", len(sale.Lines)).
		Str("total_cost", sale.TotalCost.String()).
		Msg("venta registrada")
	invalidate(ctx, uc.cache, uc.log, in.CompanyID)
	return sale, nil
}

// GetSale devuelve la venta con los costos registrados al momento de la venta.
func (uc *RecordSaleUseCase) GetSale(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.CompanyID != companyID {
		return nil, domain.ErrSaleNotFound
	}
	return sale, nil
}
