package repository

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// SaleRepository persiste ventas con su costo base por línea y el detalle por lote.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
}
