package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notas estándar de los lotes.
const (
	NoteInitialStock = "stock inicial"
	NoteRestock      = "reposición"
)

// LotLedger libro de lotes: único punto de creación de lotes y lectura ordenada por política.
type LotLedger struct {
	txRunner TxRunner
	lotRepo  repository.LotRepository
	cache    ValuationCache
	log      zerolog.Logger
}

// NewLotLedger construye el libro. lotRepo se usa para lecturas fuera de transacción.
func NewLotLedger(txRunner TxRunner, lotRepo repository.LotRepository, cache ValuationCache, log zerolog.Logger) *LotLedger {
	return &LotLedger{txRunner: txRunner, lotRepo: lotRepo, cache: cache, log: log}
}

// RecordLotInput entrada para registrar un lote (recepción de mercancía).
// Si UnitCost es nil se usa el costo actual del producto. ReceivedAt cero = ahora.
type RecordLotInput struct {
	CompanyID  string
	ProductID  string
	Quantity   int64
	UnitCost   *decimal.Decimal
	ReceivedAt time.Time
	ReceivedBy string
	Note       string
}

func (in RecordLotInput) validate() error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if in.UnitCost != nil && !inventory.ValidUnitCost(*in.UnitCost) {
		return domain.ErrInvalidCost
	}
	return nil
}

// RecordLot bloquea el producto, inserta el lote con RemainingQuantity = Quantity y suma la
// cantidad al stock del producto, todo en una transacción.
func (l *LotLedger) RecordLot(ctx context.Context, in RecordLotInput) (*entity.Lot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Note == "" {
		in.Note = NoteRestock
	}
	var (
		lot       *entity.Lot
		companyID string
	)
	err := l.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil || (in.CompanyID != "" && product.CompanyID != in.CompanyID) {
			return domain.ErrProductNotFound
		}
		companyID = product.CompanyID
		lot, err = l.RecordLotInTx(ctx, lotRepo, productRepo, product, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().
		Str("product_id", lot.ProductID).
		Int64("lot_id", lot.ID).
		Int64("quantity", lot.QuantityReceived).
		Str("unit_cost", lot.UnitCost.String()).
		Msg("lote registrado")
	invalidate(ctx, l.cache, l.log, companyID)
	return lot, nil
}

// RecordLotInTx registra el lote usando los repositorios de la transacción del llamador.
// El llamador debe haber bloqueado product (GetForUpdate). Lo usa también la creación de
// productos con stock inicial: no existe otra ruta de inserción de lotes.
func (l *LotLedger) RecordLotInTx(
	ctx context.Context,
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	in RecordLotInput,
) (*entity.Lot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if product == nil || product.ID != in.ProductID {
		return nil, domain.ErrProductNotFound
	}
	unitCost := product.Cost
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	if !inventory.ValidUnitCost(unitCost) {
		return nil, domain.ErrInvalidCost
	}
	now := time.Now().UTC()
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	lot := &entity.Lot{
		ProductID:         product.ID,
		QuantityReceived:  in.Quantity,
		UnitCost:          unitCost,
		RemainingQuantity: in.Quantity,
		ReceivedAt:        receivedAt,
		ReceivedBy:        in.ReceivedBy,
		Note:              in.Note,
		CreatedAt:         now,
	}
	if err := lotRepo.Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("crear lote: %w", err)
	}
	if err := productRepo.AdjustStock(ctx, product.ID, in.Quantity); err != nil {
		return nil, err
	}
	product.Stock += in.Quantity
	return lot, nil
}

// UnconsumedLots devuelve un iterador perezoso y reiniciable sobre los lotes con
// RemainingQuantity > 0 en el orden de la política.
func (l *LotLedger) UnconsumedLots(ctx context.Context, productID string, policy inventory.Policy) (*LotIterator, error) {
	order, err := inventory.OrderFor(policy)
	if err != nil {
		return nil, err
	}
	return newLotIterator(func() ([]entity.Lot, error) {
		return l.lotRepo.ListUnconsumed(ctx, productID, order)
	}), nil
}

// Lot devuelve un lote del producto; ErrLotNotFound si no existe o pertenece a otro producto.
func (l *LotLedger) Lot(ctx context.Context, productID string, lotID int64) (*entity.Lot, error) {
	lot, err := l.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil || lot.ProductID != productID {
		return nil, domain.ErrLotNotFound
	}
	return lot, nil
}

// History devuelve todos los lotes del producto (incluye agotados), más reciente primero.
func (l *LotLedger) History(ctx context.Context, productID string, limit, offset int) ([]entity.Lot, error) {
	return l.lotRepo.ListByProduct(ctx, productID, limit, offset)
}

// LotIterator recorre lotes cargados bajo demanda. Reset vuelve a leer el libro.
type LotIterator struct {
	load   func() ([]entity.Lot, error)
	lots   []entity.Lot
	pos    int
	loaded bool
	err    error
}

func newLotIterator(load func() ([]entity.Lot, error)) *LotIterator {
	return &LotIterator{load: load, pos: -1}
}

// Next avanza al siguiente lote; false al terminar o ante error (ver Err).
func (it *LotIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.loaded {
		it.lots, it.err = it.load()
		it.loaded = true
		if it.err != nil {
			return false
		}
	}
	if it.pos+1 >= len(it.lots) {
		return false
	}
	it.pos++
	return true
}

// Lot devuelve el lote actual. Solo válido tras un Next que devolvió true.
func (it *LotIterator) Lot() entity.Lot {
	return it.lots[it.pos]
}

func (it *LotIterator) Err() error {
	return it.err
}

// Reset reinicia el recorrido; el siguiente Next relee el libro.
func (it *LotIterator) Reset() {
	it.lots = nil
	it.pos = -1
	it.loaded = false
	it.err = nil
}

// Collect consume el iterador completo.
func (it *LotIterator) Collect() ([]entity.Lot, error) {
	out := make([]entity.Lot, 0)
	for it.Next() {
		out = append(out, it.Lot())
	}
	return out, it.Err()
}
