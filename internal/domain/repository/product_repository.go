package repository

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	// AdjustStock suma delta al stock actual; nunca lo deja negativo (ErrInsufficientStock).
	AdjustStock(ctx context.Context, productID string, delta int64) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	// ListForValuation productos de la empresa, opcionalmente filtrados por producto o categoría.
	ListForValuation(ctx context.Context, companyID, productID, categoryID string) ([]*entity.Product, error)
}
