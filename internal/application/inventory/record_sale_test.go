package inventory_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	appinventory "github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func sellOne(e *env, productID string, qty int64) (*appinventory.RecordSaleInput, error) {
	in := appinventory.RecordSaleInput{
		CompanyID: testCompany,
		ActorID:   "vendedor-1",
		Lines:     []appinventory.SaleLineInput{{ProductID: productID, Quantity: qty}},
	}
	_, err := e.sales.RecordSale(context.Background(), in)
	return &in, err
}

func TestRecordSale_CostoPorPolitica(t *testing.T) {
	cases := []struct {
		policy    string
		total     string
		unitCost  string
		remaining []int64 // L1, L2
	}{
		{"FIFO", "86", "10.75", []int64{0, 2}},
		{"LIFO", "90", "11.25", []int64{2, 0}},
		{"AVERAGE", "88", "11", []int64{0, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.policy, func(t *testing.T) {
			e := newEnv(t)
			id := e.twoLots(t)
			e.setPolicy(t, tc.policy)

			sale, err := e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{
				CompanyID: testCompany,
				Reference: "T-1",
				Lines:     []appinventory.SaleLineInput{{ProductID: id, Quantity: 8}},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.policy, sale.Policy)
			require.Len(t, sale.Lines, 1)
			assert.True(t, dec(tc.total).Equal(sale.TotalCost), "total obtenido %s", sale.TotalCost)
			assert.True(t, dec(tc.unitCost).Equal(sale.Lines[0].UnitCost), "unitario obtenido %s", sale.Lines[0].UnitCost)
			assert.Equal(t, int64(2), e.stock(t, id))

			history, err := e.ledger.History(context.Background(), id, 0, 0)
			require.NoError(t, err)
			require.Len(t, history, 2)
			// History: más reciente primero (L2, L1).
			assert.Equal(t, tc.remaining[1], history[0].RemainingQuantity)
			assert.Equal(t, tc.remaining[0], history[1].RemainingQuantity)
		})
	}
}

func TestRecordSale_DetallePorLoteSigueOrdenDeConsumo(t *testing.T) {
	e := newEnv(t)
	id := e.twoLots(t)
	e.setPolicy(t, "LIFO")

	sale, err := e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{
		CompanyID: testCompany,
		Lines:     []appinventory.SaleLineInput{{ProductID: id, Quantity: 8}},
	})
	require.NoError(t, err)
	lots := sale.Lines[0].Lots
	require.Len(t, lots, 2)
	assert.Equal(t, int64(5), lots[0].Quantity)
	assert.True(t, dec("12").Equal(lots[0].UnitCost))
	assert.Equal(t, int64(3), lots[1].Quantity)

	stored, err := e.sales.GetSale(context.Background(), testCompany, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.Lines[0].Lots, stored.Lines[0].Lots)
}

func TestRecordSale_FusionaLineasDelMismoProducto(t *testing.T) {
	e := newEnv(t)
	id := e.twoLots(t)

	sale, err := e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{
		CompanyID: testCompany,
		Lines: []appinventory.SaleLineInput{
			{ProductID: id, Quantity: 3},
			{ProductID: id, Quantity: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, int64(8), sale.Lines[0].Quantity)
	assert.True(t, dec("86").Equal(sale.TotalCost))
}

func TestRecordSale_ErrorEnUnaLineaRevierteTodo(t *testing.T) {
	e := newEnv(t)
	ok := e.twoLots(t)
	short := e.newProduct(t, "", "1")
	e.lot(t, short, 1, "1", time.Now().UTC())

	_, err := e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{
		CompanyID: testCompany,
		Lines: []appinventory.SaleLineInput{
			{ProductID: ok, Quantity: 4},
			{ProductID: short, Quantity: 2},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(10), e.stock(t, ok))
	assert.Equal(t, int64(1), e.stock(t, short))
	drifts, err := e.consistency.Check(context.Background(), testCompany, "")
	require.NoError(t, err)
	assert.Empty(t, drifts, "el rollback deja stock y lotes alineados")
}

func TestRecordSale_Validaciones(t *testing.T) {
	e := newEnv(t)
	id := e.twoLots(t)

	_, err := sellOne(e, id, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = sellOne(e, id, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = sellOne(e, "no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{CompanyID: testCompany})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{
		CompanyID: "empresa-2",
		Lines:     []appinventory.SaleLineInput{{ProductID: id, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound, "productos de otra empresa no existen")
	assert.Equal(t, int64(10), e.stock(t, id))
}

func TestRecordSale_LibroDesalineadoNoSeCorrige(t *testing.T) {
	e := newEnv(t)
	id := e.twoLots(t)
	// Stock inflado sin lote: divergencia que solo un operador puede conciliar.
	require.NoError(t, e.store.Products().AdjustStock(context.Background(), id, 5))

	_, err := sellOne(e, id, 12)
	require.ErrorIs(t, err, domain.ErrInsufficientInventoryHistory)
	var drift *domain.LedgerDriftError
	require.True(t, errors.As(err, &drift))
	assert.Equal(t, int64(12), drift.Requested)
	assert.Equal(t, int64(10), drift.Available)

	assert.Equal(t, int64(15), e.stock(t, id))
	history, err := e.ledger.History(context.Background(), id, 0, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2, "no se fabrican lotes")
}

func TestRecordSale_CambioDePoliticaNoEsRetroactivo(t *testing.T) {
	e := newEnv(t)
	id := e.twoLots(t)

	first, err := e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{
		CompanyID: testCompany,
		Lines:     []appinventory.SaleLineInput{{ProductID: id, Quantity: 2}},
	})
	require.NoError(t, err)
	e.setPolicy(t, "LIFO")

	stored, err := e.sales.GetSale(context.Background(), testCompany, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "FIFO", stored.Policy)
	assert.True(t, dec("20").Equal(stored.TotalCost))

	second, err := e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{
		CompanyID: testCompany,
		Lines:     []appinventory.SaleLineInput{{ProductID: id, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "LIFO", second.Policy)
	assert.True(t, dec("24").Equal(second.TotalCost))
}

func TestGetSale_OtraEmpresa(t *testing.T) {
	e := newEnv(t)
	id := e.twoLots(t)
	sale, err := e.sales.RecordSale(context.Background(), appinventory.RecordSaleInput{
		CompanyID: testCompany,
		Lines:     []appinventory.SaleLineInput{{ProductID: id, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = e.sales.GetSale(context.Background(), "empresa-2", sale.ID)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
	_, err = e.sales.GetSale(context.Background(), testCompany, "no-existe")
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

func TestRecordSale_ConcurrentesNuncaSobrevenden(t *testing.T) {
	e := newEnv(t)
	id := e.newProduct(t, "", "1")
	e.lot(t, id, 4, "1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	e.lot(t, id, 6, "2", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	var ok, rejected atomic.Int64
	var g errgroup.Group
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			_, err := sellOne(e, id, 1)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(10), ok.Load())
	assert.Equal(t, int64(15), rejected.Load())
	assert.Equal(t, int64(0), e.stock(t, id))
	drifts, err := e.consistency.Check(context.Background(), testCompany, id)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestAllocate_Autonomo(t *testing.T) {
	e := newEnv(t)
	id := e.twoLots(t)

	alloc, err := e.engine.Allocate(context.Background(), testCompany, id, 8)
	require.NoError(t, err)
	assert.Equal(t, inventory.PolicyFIFO, alloc.Policy)
	assert.True(t, dec("86").Equal(alloc.TotalCost))
	assert.Equal(t, int64(2), e.stock(t, id))

	_, err = e.engine.Allocate(context.Background(), testCompany, id, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
