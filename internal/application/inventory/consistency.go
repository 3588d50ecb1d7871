package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

// StockDrift producto cuyo stock no coincide con la suma de lotes sin consumir.
type StockDrift struct {
	ProductID       string
	CurrentStock    int64
	LedgerRemaining int64
	Difference      int64 // CurrentStock - LedgerRemaining
}

// ConsistencyUseCase verifica Σ RemainingQuantity == Stock. Solo reporta: la reconciliación
// la decide un operador, nunca se fabrican lotes.
type ConsistencyUseCase struct {
	txRunner TxRunner
}

// NewConsistencyUseCase construye el caso de uso.
func NewConsistencyUseCase(txRunner TxRunner) *ConsistencyUseCase {
	return &ConsistencyUseCase{txRunner: txRunner}
}

// Check devuelve los productos con divergencia (vacío si el libro es consistente).
func (uc *ConsistencyUseCase) Check(ctx context.Context, companyID, productID string) ([]StockDrift, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	drifts := make([]StockDrift, 0)
	err := uc.txRunner.RunReadOnly(ctx, func(lotRepo repository.LotRepository, productRepo repository.ProductRepository) error {
		products, err := productRepo.ListForValuation(ctx, companyID, productID, "")
		if err != nil {
			return err
		}
		if productID != "" {
			for _, p := range products {
				remaining, err := lotRepo.SumRemaining(ctx, p.ID)
				if err != nil {
					return err
				}
				drifts = appendDrift(drifts, p.ID, p.Stock, remaining)
			}
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
			var remaining int64
			for _, l := range lotsByProduct[p.ID] {
				remaining += l.RemainingQuantity
			}
			drifts = appendDrift(drifts, p.ID, p.Stock, remaining)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].ProductID < drifts[j].ProductID })
	return drifts, nil
}

func appendDrift(drifts []StockDrift, productID string, stock, remaining int64) []StockDrift {
	if stock == remaining {
		return drifts
	}
	return append(drifts, StockDrift{
		ProductID:       productID,
		CurrentStock:    stock,
		LedgerRemaining: remaining,
		Difference:      stock - remaining,
	})
}
