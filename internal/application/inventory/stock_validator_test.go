package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

func TestStockValidator_TodoDisponible(t *testing.T) {
	f := newFixture(t)
	a := f.seedProduct("A", 10, 1)
	b := f.seedProduct("B", 3, 1)

	res, err := appinventory.NewStockValidator(f.store.Products()).Validate(f.ctx, []appinventory.StockDemand{
		{ProductID: a.ID, Quantity: 10},
		{ProductID: b.ID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Empty(t, res.Failures)
}

func TestStockValidator_ReportaCadaFallo(t *testing.T) {
	f := newFixture(t)
	a := f.seedProduct("Gadget", 15, 1)

	res, err := appinventory.NewStockValidator(f.store.Products()).Validate(f.ctx, []appinventory.StockDemand{
		{ProductID: a.ID, Quantity: 20},
		{ProductID: 999, Quantity: 1},
	})
	require.NoError(t, err)
	assert.False(t, res.OK)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "stock insuficiente para Gadget: disponible 15, solicitado 20", res.Failures[0])
	assert.Equal(t, "producto 999 no encontrado", res.Failures[1])
}

func TestStockValidator_NoModificaNada(t *testing.T) {
	f := newFixture(t)
	a := f.seedProduct("Gadget", 5, 1)

	_, err := appinventory.NewStockValidator(f.store.Products()).Validate(f.ctx, []appinventory.StockDemand{
		{ProductID: a.ID, Quantity: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.quantity(a.ID))
	assert.Zero(t, f.ledgerSum(a.ID))
}

func TestStockValidator_ListaVaciaEsOK(t *testing.T) {
	f := newFixture(t)

	res, err := appinventory.NewStockValidator(f.store.Products()).Validate(f.ctx, nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestQueryUseCase_HistorialYConciliacion(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder("ORD-Q", entity.OrderTypeInbound, entity.OrderStatusPending, false, line("Widget", 15, "9.50"))
	_, err := f.ledger.Reconcile(f.ctx, o.ID, entity.OrderStatusPending, entity.OrderStatusCompleted)
	require.NoError(t, err)
	_, err = f.ledger.Reconcile(f.ctx, o.ID, entity.OrderStatusCompleted, entity.OrderStatusCancelled)
	require.NoError(t, err)

	p, err := f.store.Products().FindByName(f.ctx, "Widget")
	require.NoError(t, err)
	require.NotNil(t, p)

	uc := appinventory.NewQueryUseCase(f.store.Products(), f.store.Transactions())

	history, err := uc.History(f.ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Widget", history.ProductName)
	require.Len(t, history.Items, 2)
	assert.Equal(t, "ORD-Q (REVERSED)", history.Items[0].ReferenceNumber, "más recientes primero")

	check, err := uc.CheckProduct(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent, "un producto auto-creado solo cambia vía ledger")
	assert.Zero(t, check.Drift)
}

func TestQueryUseCase_DriftPorCantidadInicial(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct("Seeded", 10, 1)

	check, err := appinventory.NewQueryUseCase(f.store.Products(), f.store.Transactions()).CheckProduct(f.ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, check.Consistent)
	assert.Equal(t, int64(10), check.Drift)
}

func TestQueryUseCase_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	uc := appinventory.NewQueryUseCase(f.store.Products(), f.store.Transactions())

	_, err := uc.History(f.ctx, 1, 10)
	assert.Error(t, err)
	_, err = uc.CheckProduct(f.ctx, 1)
	assert.Error(t, err)
}

func TestQueryUseCase_StockBajo(t *testing.T) {
	f := newFixture(t)
	f.seedProduct("Lleno", 50, 5)
	low := f.seedProduct("Bajo", 2, 5)

	alerts, err := appinventory.NewQueryUseCase(f.store.Products(), f.store.Transactions()).LowStock(f.ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, low.ID, alerts[0].ProductID)
	assert.Equal(t, int64(3), alerts[0].Deficit)
}
