package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/memory"
)

func TestStore_RunRollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	p := &entity.Product{Name: "Widget", SKU: "W1", Quantity: 10, Price: decimal.NewFromInt(1)}
	require.NoError(t, st.Products().Create(ctx, p))

	boom := errors.New("boom")
	err := st.Run(ctx, func(_ repository.OrderRepository, products repository.ProductRepository, txLog repository.InventoryTransactionRepository) error {
		require.NoError(t, products.SetQuantity(ctx, p.ID, 3))
		require.NoError(t, txLog.Append(ctx, &entity.InventoryTransaction{ProductID: p.ID, QuantityChange: -7, PreviousQuantity: 10, NewQuantity: 3}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Quantity, "el rollback debe restaurar la cantidad")

	sum, err := st.Transactions().SumByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, sum, "el rollback no debe dejar transacciones")
}

func TestStore_RunCommitPublicaCambios(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	p := &entity.Product{Name: "Widget", SKU: "W1", Quantity: 10}
	require.NoError(t, st.Products().Create(ctx, p))

	err := st.Run(ctx, func(_ repository.OrderRepository, products repository.ProductRepository, _ repository.InventoryTransactionRepository) error {
		return products.SetQuantity(ctx, p.ID, 4)
	})
	require.NoError(t, err)

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Quantity)
}

func TestProductRepository_FindByNameGanaElMenorID(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	first := &entity.Product{Name: "Bolt", SKU: "B1", Quantity: 1}
	second := &entity.Product{Name: "Bolt", SKU: "B2", Quantity: 2}
	require.NoError(t, st.Products().Create(ctx, first))
	require.NoError(t, st.Products().Create(ctx, second))

	got, err := st.Products().FindByName(ctx, "Bolt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	missing, err := st.Products().FindByName(ctx, "bolt")
	require.NoError(t, err)
	assert.Nil(t, missing, "la búsqueda por nombre es exacta")
}

func TestProductRepository_SetQuantityNegativaFalla(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	p := &entity.Product{Name: "Nut", SKU: "N1", Quantity: 1}
	require.NoError(t, st.Products().Create(ctx, p))

	assert.Error(t, st.Products().SetQuantity(ctx, p.ID, -1))
	assert.Error(t, st.Products().SetQuantity(ctx, 999, 1))
}

func TestProductRepository_ListLowStockOrdenaPorDeficit(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	products := []*entity.Product{
		{Name: "A", SKU: "A", Quantity: 4, MinStockLevel: 5},
		{Name: "B", SKU: "B", Quantity: 50, MinStockLevel: 5},
		{Name: "C", SKU: "C", Quantity: 0, MinStockLevel: 10},
		{Name: "D", SKU: "D", Quantity: 5, MinStockLevel: 5},
	}
	for _, p := range products {
		require.NoError(t, st.Products().Create(ctx, p))
	}

	low, err := st.Products().ListLowStock(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(low))
	for _, p := range low {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"C", "A", "D"}, names)
}

func TestOrderRepository_NumeroDuplicadoYPrefijo(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	orders := st.Orders()
	require.NoError(t, orders.Create(ctx, &entity.Order{OrderNumber: "ORD-2026-10-001", Status: entity.OrderStatusPending}))
	require.NoError(t, orders.Create(ctx, &entity.Order{OrderNumber: "ORD-2026-10-002", Status: entity.OrderStatusCompleted}))
	require.NoError(t, orders.Create(ctx, &entity.Order{OrderNumber: "ORD-2026-09-001", Status: entity.OrderStatusCompleted, InventoryProcessed: true}))

	assert.Error(t, orders.Create(ctx, &entity.Order{OrderNumber: "ORD-2026-10-001"}))

	n, err := orders.CountByNumberPrefix(ctx, "ORD-2026-10-")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := orders.ListUnprocessedCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ORD-2026-10-002", pending[0].OrderNumber)
}

func TestInventoryTransactionRepository_AppendYConsultas(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	txLog := st.Transactions()
	orderID := int64(7)

	require.NoError(t, txLog.Append(ctx, &entity.InventoryTransaction{ProductID: 1, OrderID: &orderID, QuantityChange: 5, NewQuantity: 5}))
	require.NoError(t, txLog.Append(ctx, &entity.InventoryTransaction{ProductID: 1, QuantityChange: -2, PreviousQuantity: 5, NewQuantity: 3}))
	require.NoError(t, txLog.Append(ctx, &entity.InventoryTransaction{ProductID: 2, OrderID: &orderID, QuantityChange: 1, NewQuantity: 1}))
	assert.Error(t, txLog.Append(ctx, &entity.InventoryTransaction{ProductID: 1, QuantityChange: 1, PreviousQuantity: 3, NewQuantity: 9}),
		"new_quantity debe ser previous + change")

	history, err := txLog.ListByProduct(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(-2), history[0].QuantityChange, "más recientes primero")

	limited, err := txLog.ListByProduct(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	byOrder, err := txLog.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Len(t, byOrder, 2)

	sum, err := txLog.SumByProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum)
}

func TestStore_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := memory.NewStore()

	_, err := st.Products().GetByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	err = st.Run(ctx, func(repository.OrderRepository, repository.ProductRepository, repository.InventoryTransactionRepository) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
