package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/wms-ledger/pkg/config"
)

// Requiere una base desechable: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido; se omite la prueba de integración")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE inventory_transactions, orders, products RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestPostgresLedger_AplicaYRevierte(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	txLog := postgres.NewInventoryTransactionRepository(pool)
	ledger := appinventory.NewLedger(postgres.NewTxRunner(pool), nil, nil, nil)

	p := &entity.Product{Name: "Gadget", SKU: "GAD-1", Quantity: 10, Price: decimal.NewFromInt(3), MinStockLevel: 2}
	require.NoError(t, products.Create(ctx, p))
	o := &entity.Order{
		OrderNumber: "ORD-PG-1", Type: entity.OrderTypeOutbound, Status: entity.OrderStatusPending,
		Items: []entity.OrderLine{{Name: "Gadget", Quantity: 4, UnitPrice: decimal.RequireFromString("3.50")}},
	}
	require.NoError(t, orders.Create(ctx, o))

	_, err := ledger.Reconcile(ctx, o.ID, entity.OrderStatusPending, entity.OrderStatusCompleted)
	require.NoError(t, err)
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Quantity)

	_, err = ledger.Reconcile(ctx, o.ID, entity.OrderStatusCompleted, entity.OrderStatusCancelled)
	require.NoError(t, err)
	got, err = products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Quantity)

	history, err := txLog.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, decimal.RequireFromString("3.50").Equal(history[0].UnitPrice))
	assert.Equal(t, "ORD-PG-1 (REVERSED)", history[1].ReferenceNumber)

	stored, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, stored.InventoryProcessed)
	require.Len(t, stored.Items, 1, "las líneas sobreviven el ida y vuelta por JSONB")
}

func TestPostgresLedger_AtomicidadYAutoCreacion(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	ledger := appinventory.NewLedger(postgres.NewTxRunner(pool), nil, nil, nil)

	// inbound con un producto nuevo y una segunda línea válida: todo se confirma
	in := &entity.Order{
		OrderNumber: "ORD-PG-2", Type: entity.OrderTypeInbound, Status: entity.OrderStatusPending,
		Items: []entity.OrderLine{{Name: "Widget", Quantity: 15, UnitPrice: decimal.RequireFromString("9.50")}},
	}
	require.NoError(t, orders.Create(ctx, in))
	res, err := ledger.Reconcile(ctx, in.ID, entity.OrderStatusPending, entity.OrderStatusCompleted)
	require.NoError(t, err)
	require.Len(t, res.AutoProvisioned, 1)

	widget, err := products.FindByName(ctx, "Widget")
	require.NoError(t, err)
	require.NotNil(t, widget)
	assert.Equal(t, int64(15), widget.Quantity)
	assert.Equal(t, entity.AutoGeneratedCategory, widget.Category)

	// outbound que falla en la segunda línea: la primera no debe persistir
	out := &entity.Order{
		OrderNumber: "ORD-PG-3", Type: entity.OrderTypeOutbound, Status: entity.OrderStatusPending,
		Items: []entity.OrderLine{
			{Name: "Widget", Quantity: 5, UnitPrice: decimal.NewFromInt(1)},
			{Name: "Widget", Quantity: 50, UnitPrice: decimal.NewFromInt(1)},
		},
	}
	require.NoError(t, orders.Create(ctx, out))
	_, err = ledger.Reconcile(ctx, out.ID, entity.OrderStatusPending, entity.OrderStatusCompleted)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	widget, err = products.FindByName(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, int64(15), widget.Quantity)
}

func TestPostgresLedger_ConcurrenciaSinSobreventa(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	ledger := appinventory.NewLedger(postgres.NewTxRunner(pool), nil, nil, nil)

	p := &entity.Product{Name: "Scarce", SKU: "SCA-1", Quantity: 5}
	require.NoError(t, products.Create(ctx, p))

	const workers = 8
	ids := make([]int64, workers)
	for i := range ids {
		o := &entity.Order{
			OrderNumber: "ORD-PG-C" + string(rune('A'+i)), Type: entity.OrderTypeOutbound, Status: entity.OrderStatusPending,
			Items: []entity.OrderLine{{Name: "Scarce", Quantity: 1}},
		}
		require.NoError(t, orders.Create(ctx, o))
		ids[i] = o.ID
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := ledger.Reconcile(ctx, id, entity.OrderStatusPending, entity.OrderStatusCompleted); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 5, ok, "solo 5 salidas caben en el stock")
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Quantity)
}

func TestPostgresLedger_EntradasConcurrentesCreanUnSoloProducto(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	orders := postgres.NewOrderRepository(pool)
	ledger := appinventory.NewLedger(postgres.NewTxRunner(pool), nil, nil, nil)

	const workers = 8
	ids := make([]int64, workers)
	for i := range ids {
		o := &entity.Order{
			OrderNumber: "ORD-PG-IN" + string(rune('A'+i)), Type: entity.OrderTypeInbound, Status: entity.OrderStatusPending,
			Items: []entity.OrderLine{{Name: "Nuevo", Quantity: int64(i + 1), UnitPrice: decimal.NewFromInt(2)}},
		}
		require.NoError(t, orders.Create(ctx, o))
		ids[i] = o.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = ledger.Reconcile(ctx, id, entity.OrderStatusPending, entity.OrderStatusCompleted)
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var count, total int64
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*), COALESCE(SUM(quantity), 0)::bigint FROM products WHERE name = 'Nuevo'`,
	).Scan(&count, &total))
	assert.Equal(t, int64(1), count, "el nombre se auto-crea una sola vez")
	assert.Equal(t, int64(workers*(workers+1)/2), total, "toda la entrada cae en el mismo producto")
}
