package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas con su costo base por línea y por lote.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera, líneas y detalle por lote en un solo batch.
// Debe ejecutarse dentro de la transacción que consumió los lotes.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO sales (id, company_id, reference, policy, total_cost, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
		sale.ID, sale.CompanyID, sale.Reference, sale.Policy, sale.TotalCost, sale.CreatedAt, sale.CreatedBy)
	for _, l := range sale.Lines {
		b.Queue(`
			INSERT INTO sale_lines (id, sale_id, product_id, quantity, unit_cost, total_cost, policy)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, sale.ID, l.ProductID, l.Quantity, l.UnitCost, l.TotalCost, sale.Policy)
		for pos, lot := range l.Lots {
			b.Queue(`
				INSERT INTO sale_line_lots (sale_line_id, lot_id, position, quantity, unit_cost)
				VALUES ($1, $2, $3, $4, $5)`,
				l.ID, lot.LotID, pos, lot.Quantity, lot.UnitCost)
		}
	}

	br := r.q.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert sale: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID devuelve la venta con líneas y lotes (en orden de consumo); nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, reference, policy, total_cost, created_at, COALESCE(created_by, '')
		FROM sales WHERE id = $1`, id,
	).Scan(&s.ID, &s.CompanyID, &s.Reference, &s.Policy, &s.TotalCost, &s.CreatedAt, &s.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_cost, total_cost
		FROM sale_lines WHERE sale_id = $1 ORDER BY product_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	s.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.SaleLine, error) {
		var l entity.SaleLine
		err := row.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.UnitCost, &l.TotalCost)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sale line: %w", err)
	}

	idx := make(map[string]int, len(s.Lines))
	for i, l := range s.Lines {
		idx[l.ID] = i
	}
	lotRows, err := r.q.Query(ctx, `
		SELECT sll.sale_line_id, sll.lot_id, sll.quantity, sll.unit_cost
		FROM sale_line_lots sll
		JOIN sale_lines sl ON sl.id = sll.sale_line_id
		WHERE sl.sale_id = $1
		ORDER BY sll.sale_line_id, sll.position`, id)
	if err != nil {
		return nil, fmt.Errorf("list sale line lots: %w", err)
	}
	defer lotRows.Close()
	for lotRows.Next() {
		var (
			lineID string
			lot    entity.SaleLineLot
		)
		if err := lotRows.Scan(&lineID, &lot.LotID, &lot.Quantity, &lot.UnitCost); err != nil {
			return nil, fmt.Errorf("scan sale line lot: %w", err)
		}
		if i, ok := idx[lineID]; ok {
			s.Lines[i].Lots = append(s.Lines[i].Lots, lot)
		}
	}
	return &s, lotRows.Err()
}
