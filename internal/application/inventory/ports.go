package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de costeo: si fn devuelve error, ningún cambio es visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
	// RunReadOnly abre una transacción de solo lectura con una vista consistente (reportes).
	RunReadOnly(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// ValuationCache cache de valorizaciones. Las claves incluyen una generación por empresa que
// se incrementa tras cada escritura confirmada en el libro o cambio de política.
type ValuationCache interface {
	Get(ctx context.Context, key string) ([]inventory.ProductValuation, bool, error)
	Set(ctx context.Context, key string, value []inventory.ProductValuation, ttl time.Duration) error
	Generation(ctx context.Context, companyID string) (int64, error)
	Bump(ctx context.Context, companyID string) error
}
