package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/cache"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testCompany = "empresa-1"

// env motor completo sobre el backend en memoria.
type env struct {
	store       *memory.Store
	txRunner    *memory.TxRunner
	cache       *cache.LocalValuationCache
	policy      *appinventory.PolicySwitch
	ledger      *appinventory.LotLedger
	engine      *appinventory.AllocationEngine
	sales       *appinventory.RecordSaleUseCase
	valuation   *appinventory.ValuationUseCase
	consistency *appinventory.ConsistencyUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	valCache := cache.NewLocalValuationCache()
	policy := appinventory.NewPolicySwitch(store.Settings(), valCache, log)
	engine := appinventory.NewAllocationEngine(txRunner, policy, valCache, log)
	return &env{
		store:       store,
		txRunner:    txRunner,
		cache:       valCache,
		policy:      policy,
		ledger:      appinventory.NewLotLedger(txRunner, store.Lots(), valCache, log),
		engine:      engine,
		sales:       appinventory.NewRecordSaleUseCase(txRunner, engine, policy, store.Sales(), valCache, log),
		valuation:   appinventory.NewValuationUseCase(txRunner, policy, valCache, time.Minute, log),
		consistency: appinventory.NewConsistencyUseCase(txRunner),
	}
}

// newProduct crea un producto sin stock; el stock solo entra por lotes.
func (e *env) newProduct(t *testing.T, categoryID, cost string) string {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		ID:         uuid.NewString(),
		CompanyID:  testCompany,
		CategoryID: categoryID,
		SKU:        uuid.NewString()[:8],
		Name:       "producto",
		Price:      decimal.NewFromInt(20),
		Cost:       decimal.RequireFromString(cost),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, e.store.Products().Create(context.Background(), p))
	return p.ID
}

// lot registra un lote con fecha de recepción explícita.
func (e *env) lot(t *testing.T, productID string, qty int64, cost string, receivedAt time.Time) *entity.Lot {
	t.Helper()
	unitCost := decimal.RequireFromString(cost)
	l, err := e.ledger.RecordLot(context.Background(), appinventory.RecordLotInput{
		CompanyID:  testCompany,
		ProductID:  productID,
		Quantity:   qty,
		UnitCost:   &unitCost,
		ReceivedAt: receivedAt,
	})
	require.NoError(t, err)
	return l
}

// twoLots producto con L1(5 a 10, t1) y L2(5 a 12, t2).
func (e *env) twoLots(t *testing.T) string {
	t.Helper()
	id := e.newProduct(t, "", "12")
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.lot(t, id, 5, "10", t1)
	e.lot(t, id, 5, "12", t1.Add(24*time.Hour))
	return id
}

func (e *env) setPolicy(t *testing.T, raw string) {
	t.Helper()
	_, err := e.policy.Set(context.Background(), testCompany, raw, "admin-1")
	require.NoError(t, err)
}

func (e *env) stock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
