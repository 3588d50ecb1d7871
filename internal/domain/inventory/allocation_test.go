package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func lot(id, qty int64, cost string, at time.Time) entity.Lot {
	return entity.Lot{
		ID:                id,
		ProductID:         "p1",
		QuantityReceived:  qty,
		RemainingQuantity: qty,
		UnitCost:          decimal.RequireFromString(cost),
		ReceivedAt:        at,
	}
}

// L1(5 @ 10, t=1), L2(5 @ 12, t=2)
func twoLots() []entity.Lot {
	return []entity.Lot{
		lot(1, 5, "10", t0.Add(time.Hour)),
		lot(2, 5, "12", t0.Add(2*time.Hour)),
	}
}

func consumed(a *Allocation) map[int64]int64 {
	m := make(map[int64]int64, len(a.Consumptions))
	for _, c := range a.Consumptions {
		m[c.LotID] = c.Quantity
	}
	return m
}

func lotIDs(a *Allocation) []int64 {
	ids := make([]int64, 0, len(a.Consumptions))
	for _, c := range a.Consumptions {
		ids = append(ids, c.LotID)
	}
	return ids
}

func TestPlanAllocation_Policies(t *testing.T) {
	tests := []struct {
		name      string
		policy    Policy
		wantTotal string
		wantUnit  string
		wantOrder []int64
		wantTaken map[int64]int64
	}{
		{
			name:      "FIFO consume L1 completo y 3 de L2",
			policy:    PolicyFIFO,
			wantTotal: "86",
			wantUnit:  "10.75",
			wantOrder: []int64{1, 2},
			wantTaken: map[int64]int64{1: 5, 2: 3},
		},
		{
			name:      "LIFO consume L2 completo y 3 de L1",
			policy:    PolicyLIFO,
			wantTotal: "90",
			wantUnit:  "11.25",
			wantOrder: []int64{2, 1},
			wantTaken: map[int64]int64{2: 5, 1: 3},
		},
		{
			name:      "AVERAGE cuesta 8 * 11 y agota en orden FIFO",
			policy:    PolicyAverage,
			wantTotal: "88",
			wantUnit:  "11",
			wantOrder: []int64{1, 2},
			wantTaken: map[int64]int64{1: 5, 2: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := PlanAllocation(tt.policy, "p1", twoLots(), 8)
			require.NoError(t, err)

			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(a.TotalCost),
				"total esperado %s, obtenido %s", tt.wantTotal, a.TotalCost)
			assert.True(t, decimal.RequireFromString(tt.wantUnit).Equal(a.UnitCostForSale),
				"unitario esperado %s, obtenido %s", tt.wantUnit, a.UnitCostForSale)
			assert.Equal(t, tt.wantOrder, lotIDs(a))
			assert.Equal(t, tt.wantTaken, consumed(a))
			assert.Equal(t, tt.policy, a.Policy)
			assert.Equal(t, int64(8), a.Quantity)
		})
	}
}

func TestPlanAllocation_DesempatePorID(t *testing.T) {
	// Mismo timestamp: el orden es ID ascendente tanto en FIFO como en LIFO.
	lots := []entity.Lot{
		lot(3, 2, "30", t0),
		lot(1, 2, "10", t0),
		lot(2, 2, "20", t0),
	}
	for _, p := range []Policy{PolicyFIFO, PolicyLIFO, PolicyAverage} {
		a, err := PlanAllocation(p, "p1", lots, 6)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, lotIDs(a), "política %s", p)
	}

	a, err := PlanAllocation(PolicyLIFO, "p1", lots, 3)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 2, 2: 1}, consumed(a))
	assert.True(t, decimal.NewFromInt(40).Equal(a.TotalCost))
}

func TestPlanAllocation_Agotamiento(t *testing.T) {
	lots := twoLots()

	a, err := PlanAllocation(PolicyFIFO, "p1", lots, 10)
	require.NoError(t, err)
	for _, c := range a.Consumptions {
		assert.Zero(t, c.RemainingAfter, "lote %d debe quedar en cero", c.LotID)
	}
	assert.True(t, decimal.NewFromInt(110).Equal(a.TotalCost))

	_, err = PlanAllocation(PolicyFIFO, "p1", lots, 11)
	require.ErrorIs(t, err, domain.ErrInsufficientInventoryHistory)
	var drift *domain.LedgerDriftError
	require.True(t, errors.As(err, &drift))
	assert.Equal(t, int64(11), drift.Requested)
	assert.Equal(t, int64(10), drift.Available)
	assert.Equal(t, "p1", drift.ProductID)

	// el planificador nunca muta la entrada
	assert.Equal(t, twoLots(), lots)
}

func TestPlanAllocation_IgnoraLotesConsumidos(t *testing.T) {
	lots := twoLots()
	lots[0].RemainingQuantity = 0

	a, err := PlanAllocation(PolicyFIFO, "p1", lots, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, lotIDs(a))
	assert.True(t, decimal.NewFromInt(24).Equal(a.TotalCost))
}

func TestPlanAllocation_Errores(t *testing.T) {
	_, err := PlanAllocation(PolicyFIFO, "p1", twoLots(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = PlanAllocation(PolicyFIFO, "p1", twoLots(), -3)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = PlanAllocation(Policy(0), "p1", twoLots(), 1)
	assert.ErrorIs(t, err, domain.ErrUnknownPolicy)

	_, err = PlanAllocation(Policy(42), "p1", twoLots(), 1)
	assert.ErrorIs(t, err, domain.ErrUnknownPolicy)

	_, err = PlanAllocation(PolicyLIFO, "p1", nil, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventoryHistory)
}

func TestPlanAllocation_RedondeoAverage(t *testing.T) {
	// 0.125 por unidad: AVERAGE redondea half-up a 2 decimales, FIFO conserva el costo exacto.
	lots := []entity.Lot{lot(1, 1, "0.125", t0)}

	a, err := PlanAllocation(PolicyAverage, "p1", lots, 1)
	require.NoError(t, err)
	assert.Equal(t, "0.13", a.TotalCost.StringFixed(2))

	a, err = PlanAllocation(PolicyFIFO, "p1", lots, 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.125").Equal(a.TotalCost))

	// promedio (10 + 2*10.01)/3 = 10.00666..., 2 unidades = 20.0133 -> 20.01
	lots = []entity.Lot{lot(1, 1, "10", t0), lot(2, 2, "10.01", t0.Add(time.Minute))}
	a, err = PlanAllocation(PolicyAverage, "p1", lots, 2)
	require.NoError(t, err)
	assert.Equal(t, "20.01", a.TotalCost.StringFixed(2))
	assert.Equal(t, "10.0050", a.UnitCostForSale.StringFixed(4))

	// promedio 30.025/3 periódico: el total exacto 30.025 redondea a 30.03
	lots = []entity.Lot{lot(1, 1, "10.025", t0), lot(2, 2, "10", t0.Add(time.Minute))}
	a, err = PlanAllocation(PolicyAverage, "p1", lots, 3)
	require.NoError(t, err)
	assert.Equal(t, "30.03", a.TotalCost.StringFixed(2))
	assert.Equal(t, "10.0100", a.UnitCostForSale.StringFixed(4))
}
