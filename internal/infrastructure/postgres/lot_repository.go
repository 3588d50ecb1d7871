package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, quantity_received, unit_cost, remaining_quantity, received_at, COALESCE(received_by, ''), note, created_at`

// LotRepo libro de lotes sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create inserta el lote; el ID lo asigna la secuencia BIGSERIAL.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO inventory_lots (product_id, quantity_received, unit_cost, remaining_quantity, received_at, received_by, note, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		lot.ProductID, lot.QuantityReceived, lot.UnitCost, lot.RemainingQuantity,
		lot.ReceivedAt, lot.ReceivedBy, lot.Note, lot.CreatedAt,
	).Scan(&lot.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id int64) (*entity.Lot, error) {
	row := r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM inventory_lots WHERE id = $1`, id)
	l, err := scanLot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

func (r *LotRepo) ListUnconsumed(ctx context.Context, productID string, order inventory.LotOrder) ([]entity.Lot, error) {
	return r.listUnconsumed(ctx, productID, order, "")
}

// ListUnconsumedForUpdate bloquea las filas en el mismo orden en que se consumirán.
func (r *LotRepo) ListUnconsumedForUpdate(ctx context.Context, productID string, order inventory.LotOrder) ([]entity.Lot, error) {
	return r.listUnconsumed(ctx, productID, order, " FOR UPDATE")
}

func (r *LotRepo) listUnconsumed(ctx context.Context, productID string, order inventory.LotOrder, lock string) ([]entity.Lot, error) {
	orderBy, err := lotOrderBy(order)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE product_id = $1 AND remaining_quantity > 0
		ORDER BY ` + orderBy + lock
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list unconsumed lots: %w", err)
	}
	return collectLots(rows)
}

func lotOrderBy(order inventory.LotOrder) (string, error) {
	switch order {
	case inventory.OrderOldestFirst:
		return "received_at ASC, id ASC", nil
	case inventory.OrderNewestFirst:
		return "received_at DESC, id ASC", nil
	default:
		return "", fmt.Errorf("orden de lotes desconocido: %d", order)
	}
}

// DecrementRemaining UPDATE condicionado: nunca deja remaining_quantity negativo aunque el
// llamador no haya bloqueado la fila.
func (r *LotRepo) DecrementRemaining(ctx context.Context, lotID int64, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidQuantity
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE inventory_lots SET remaining_quantity = remaining_quantity - $2
		WHERE id = $1 AND remaining_quantity >= $2`, lotID, amount)
	if err != nil {
		return fmt.Errorf("decrement lot remaining: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_lots WHERE id = $1)`, lotID).Scan(&exists); err != nil {
		return fmt.Errorf("check lot: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInsufficientLotQuantity
}

// ListByProduct historial completo, más reciente primero.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM inventory_lots WHERE product_id = $1
		ORDER BY received_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list lots by product: %w", err)
	}
	return collectLots(rows)
}

// ListUnconsumedByProducts una sola consulta para todos los productos, en orden FIFO.
func (r *LotRepo) ListUnconsumedByProducts(ctx context.Context, productIDs []string) (map[string][]entity.Lot, error) {
	out := make(map[string][]entity.Lot, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE product_id = ANY($1::uuid[]) AND remaining_quantity > 0
		ORDER BY product_id, received_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list unconsumed lots by products: %w", err)
	}
	lots, err := collectLots(rows)
	if err != nil {
		return nil, err
	}
	for _, l := range lots {
		out[l.ProductID] = append(out[l.ProductID], l)
	}
	return out, nil
}

func (r *LotRepo) SumRemaining(ctx context.Context, productID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(remaining_quantity), 0)::bigint FROM inventory_lots WHERE product_id = $1`,
		productID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum lot remaining: %w", err)
	}
	return sum, nil
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	if err := row.Scan(&l.ID, &l.ProductID, &l.QuantityReceived, &l.UnitCost, &l.RemainingQuantity,
		&l.ReceivedAt, &l.ReceivedBy, &l.Note, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLots(rows pgx.Rows) ([]entity.Lot, error) {
	defer rows.Close()
	list := make([]entity.Lot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, *l)
	}
	return list, rows.Err()
}

// limitOrAll LIMIT NULL equivale a sin límite.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
