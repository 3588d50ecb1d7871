package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-costeo/pkg/config"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const company = "empresa-1"

type env struct {
	pool     *pgxpool.Pool
	products *postgres.ProductRepo
	ledger   *appinventory.LotLedger
	policy   *appinventory.PolicySwitch
	sales    *appinventory.RecordSaleUseCase
	val      *appinventory.ValuationUseCase
	check    *appinventory.ConsistencyUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	if testing.Short() {
		t.Skip("requiere Docker; omitido con -short")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("costeo_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log := zerolog.Nop()
	m, err := postgres.NewMigrator(pool, log)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	runner := postgres.NewTxRunner(pool, 5*time.Second)
	settings := postgres.NewSettingsRepository(pool)
	policy := appinventory.NewPolicySwitch(settings, nil, log)
	engine := appinventory.NewAllocationEngine(runner, policy, nil, log)
	return &env{
		pool:     pool,
		products: postgres.NewProductRepository(pool),
		ledger:   appinventory.NewLotLedger(runner, postgres.NewLotRepository(pool), nil, log),
		policy:   policy,
		sales:    appinventory.NewRecordSaleUseCase(runner, engine, policy, postgres.NewSaleRepository(pool), nil, log),
		val:      appinventory.NewValuationUseCase(runner, policy, nil, 0, log),
		check:    appinventory.NewConsistencyUseCase(runner),
	}
}

func (e *env) product(t *testing.T, sku string) string {
	t.Helper()
	now := time.Now().UTC()
	id := uuid.New().String()
	require.NoError(t, e.products.Create(context.Background(), &entity.Product{
		ID: id, CompanyID: company, SKU: sku, Name: sku,
		Price: decimal.NewFromInt(20), Cost: decimal.NewFromInt(10),
		CreatedAt: now, UpdatedAt: now,
	}))
	return id
}

func (e *env) lot(t *testing.T, productID string, qty int64, cost string, at time.Time) *entity.Lot {
	t.Helper()
	c := decimal.RequireFromString(cost)
	lot, err := e.ledger.RecordLot(context.Background(), appinventory.RecordLotInput{
		CompanyID: company, ProductID: productID, Quantity: qty, UnitCost: &c, ReceivedAt: at,
	})
	require.NoError(t, err)
	return lot
}

func TestPostgres_VentaLIFOYNoRetroactividad(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pid := e.product(t, "SKU-1")
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := e.lot(t, pid, 5, "10.00", t0)
	second := e.lot(t, pid, 5, "12.00", t0.Add(time.Hour))

	_, err := e.policy.Set(ctx, company, "LIFO", "admin")
	require.NoError(t, err)

	sale, err := e.sales.RecordSale(ctx, appinventory.RecordSaleInput{
		CompanyID: company, ActorID: "vendedor",
		Lines: []appinventory.SaleLineInput{{ProductID: pid, Quantity: 8}},
	})
	require.NoError(t, err)
	assert.True(t, sale.TotalCost.Equal(decimal.RequireFromString("90")))

	_, err = e.policy.Set(ctx, company, "FIFO", "admin")
	require.NoError(t, err)

	stored, err := e.sales.GetSale(ctx, company, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, "LIFO", stored.Policy)
	assert.True(t, stored.Lines[0].TotalCost.Equal(decimal.RequireFromString("90")))
	assert.True(t, stored.Lines[0].UnitCost.Equal(decimal.RequireFromString("11.25")))
	require.Len(t, stored.Lines[0].Lots, 2)
	assert.Equal(t, second.ID, stored.Lines[0].Lots[0].LotID)
	assert.Equal(t, first.ID, stored.Lines[0].Lots[1].LotID)

	vals, err := e.val.Valuation(ctx, appinventory.ValuationFilter{CompanyID: company})
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, int64(2), vals[0].RemainingQuantity)
	assert.Equal(t, "20", vals[0].TotalValue.String())

	drifts, err := e.check.Check(ctx, company, "")
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestPostgres_VentasConcurrentesNoSobreconsumen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pid := e.product(t, "SKU-C")
	e.lot(t, pid, 4, "1.00", time.Now().Add(-2*time.Hour))
	e.lot(t, pid, 6, "2.00", time.Now().Add(-time.Hour))

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		unexpect  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.sales.RecordSale(ctx, appinventory.RecordSaleInput{
				CompanyID: company,
				Lines:     []appinventory.SaleLineInput{{ProductID: pid, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrConcurrencyConflict):
			default:
				unexpect = append(unexpect, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unexpect)
	assert.Equal(t, 10, succeeded)

	p, err := e.products.GetByID(ctx, pid)
	require.NoError(t, err)
	assert.Zero(t, p.Stock)

	var negatives int
	require.NoError(t, e.pool.QueryRow(ctx,
		`SELECT count(*) FROM inventory_lots WHERE remaining_quantity < 0`).Scan(&negatives))
	assert.Zero(t, negatives)

	drifts, err := e.check.Check(ctx, company, pid)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestPostgres_DecrementRemainingCondicionado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pid := e.product(t, "SKU-D")
	lot := e.lot(t, pid, 3, "5.00", time.Time{})
	lots := postgres.NewLotRepository(e.pool)

	assert.ErrorIs(t, lots.DecrementRemaining(ctx, lot.ID, 4), domain.ErrInsufficientLotQuantity)
	assert.ErrorIs(t, lots.DecrementRemaining(ctx, 999999, 1), domain.ErrNotFound)
	require.NoError(t, lots.DecrementRemaining(ctx, lot.ID, 3))

	got, err := lots.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.True(t, got.Depleted())

	unconsumed, err := lots.ListUnconsumed(ctx, pid, inventory.OrderOldestFirst)
	require.NoError(t, err)
	assert.Empty(t, unconsumed)
}

func TestPostgres_PoliticaAlmacenadaInvalidaFallaCerrado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.pool.Exec(ctx,
		`INSERT INTO costing_settings (company_id, policy, updated_at) VALUES ($1, 'PEPS', now())`, company)
	require.NoError(t, err)

	_, err = e.policy.Get(ctx, company)
	assert.ErrorIs(t, err, domain.ErrUnknownPolicy)

	_, err = e.val.Valuation(ctx, appinventory.ValuationFilter{CompanyID: company})
	assert.ErrorIs(t, err, domain.ErrUnknownPolicy)
}

func TestPostgres_RollbackDeVentaFallida(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ok := e.product(t, "SKU-OK")
	short := e.product(t, "SKU-SHORT")
	e.lot(t, ok, 5, "1.00", time.Time{})
	e.lot(t, short, 1, "1.00", time.Time{})

	_, err := e.sales.RecordSale(ctx, appinventory.RecordSaleInput{
		CompanyID: company,
		Lines: []appinventory.SaleLineInput{
			{ProductID: ok, Quantity: 2},
			{ProductID: short, Quantity: 2},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, err := e.products.GetByID(ctx, ok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.Stock)
	sum, err := postgres.NewLotRepository(e.pool).SumRemaining(ctx, ok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum)
}
