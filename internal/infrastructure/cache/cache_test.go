package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleValuation() []inventory.ProductValuation {
	return []inventory.ProductValuation{{
		ProductID:         "p1",
		CategoryID:        "cat",
		RemainingQuantity: 2,
		AveragedUnitValue: decimal.RequireFromString("12.0000"),
		TotalValue:        decimal.RequireFromString("24.00"),
		Policy:            inventory.PolicyFIFO,
	}}
}

func TestLocalValuationCache_GetSetExpira(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLocalValuationCache()
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", sampleValuation(), time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "24", got[0].TotalValue.String())

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalValuationCache_TTLCeroNoGuarda(t *testing.T) {
	ctx := context.Background()
	c := NewLocalValuationCache()
	require.NoError(t, c.Set(ctx, "k", sampleValuation(), 0))
	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLocalValuationCache_BumpPorEmpresa(t *testing.T) {
	ctx := context.Background()
	c := NewLocalValuationCache()

	require.NoError(t, c.Bump(ctx, "c1"))
	require.NoError(t, c.Bump(ctx, "c1"))

	g1, err := c.Generation(ctx, "c1")
	require.NoError(t, err)
	g2, err := c.Generation(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), g1)
	assert.Zero(t, g2)
}

func TestNoopValuationCache(t *testing.T) {
	ctx := context.Background()
	var c NoopValuationCache
	require.NoError(t, c.Set(ctx, "k", sampleValuation(), time.Hour))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
