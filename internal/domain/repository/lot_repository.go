package repository

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
)

// LotRepository define el puerto del libro de lotes (append-mostly).
// No existe operación de borrado ni de incremento de RemainingQuantity.
type LotRepository interface {
	// Create inserta el lote y asigna su ID secuencial. Único punto de inserción.
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id int64) (*entity.Lot, error)
	// ListUnconsumed lotes con RemainingQuantity > 0 en el orden indicado (desempate por ID ascendente).
	ListUnconsumed(ctx context.Context, productID string, order inventory.LotOrder) ([]entity.Lot, error)
	// ListUnconsumedForUpdate igual que ListUnconsumed pero bloquea las filas (SELECT FOR UPDATE).
	ListUnconsumedForUpdate(ctx context.Context, productID string, order inventory.LotOrder) ([]entity.Lot, error)
	// DecrementRemaining resta amount de forma atómica; ErrInsufficientLotQuantity si amount > restante.
	DecrementRemaining(ctx context.Context, lotID int64, amount int64) error
	// ListByProduct historial completo (incluye lotes agotados), más reciente primero.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]entity.Lot, error)
	// ListUnconsumedByProducts lotes sin consumir agrupados por producto.
	ListUnconsumedByProducts(ctx context.Context, productIDs []string) (map[string][]entity.Lot, error)
	SumRemaining(ctx context.Context, productID string) (int64, error)
}
