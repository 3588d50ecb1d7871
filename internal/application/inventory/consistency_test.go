package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsistency_ReportaDivergenciaSinCorregir(t *testing.T) {
	e := newEnv(t)
	ok := e.twoLots(t)
	drifted := e.twoLots(t)
	ctx := context.Background()
	require.NoError(t, e.store.Products().AdjustStock(ctx, drifted, -3))

	drifts, err := e.consistency.Check(ctx, testCompany, "")
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, drifted, drifts[0].ProductID)
	assert.Equal(t, int64(7), drifts[0].CurrentStock)
	assert.Equal(t, int64(10), drifts[0].LedgerRemaining)
	assert.Equal(t, int64(-3), drifts[0].Difference)

	only, err := e.consistency.Check(ctx, testCompany, ok)
	require.NoError(t, err)
	assert.Empty(t, only)

	single, err := e.consistency.Check(ctx, testCompany, drifted)
	require.NoError(t, err)
	assert.Equal(t, drifts, single, "filtrar por producto reporta la misma divergencia")

	again, err := e.consistency.Check(ctx, testCompany, "")
	require.NoError(t, err)
	assert.Equal(t, drifts, again, "la verificación no modifica nada")
}

func TestConsistency_SinEmpresa(t *testing.T) {
	e := newEnv(t)
	_, err := e.consistency.Check(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
