package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	appinventory "github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/inventory"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/metrics"
)

func TestLedgerMetrics_RecordReconcile(t *testing.T) {
	m := metrics.New("test")

	m.RecordReconcile(inventory.ActionApply, &appinventory.ReconcileResult{
		Transactions: []*entity.InventoryTransaction{
			{TransactionType: entity.TransactionTypeInbound},
			{TransactionType: entity.TransactionTypeInbound},
		},
		AutoProvisioned: []*entity.Product{{ID: 1}},
	}, nil, 10*time.Millisecond)
	m.RecordReconcile(inventory.ActionApply, nil, &domain.InsufficientStockError{}, time.Millisecond)
	m.RecordReconcile(inventory.ActionNone, nil, errors.New("x"), time.Millisecond)

	// series: (apply,ok) (apply,insufficient_stock) (none,error)
	assert.Equal(t, 3, testutil.CollectAndCount(m.Registry(), "test_reconcile_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "test_stock_transactions_total"))
	assert.Equal(t, 4, testutil.CollectAndCount(m.Registry(), "test_reconcile_total", "test_auto_provisioned_products_total"))
}

func TestLedgerMetrics_ObserveHTTP(t *testing.T) {
	m := metrics.New("test")
	m.ObserveHTTP("GET", "/api/orders/:id", 200, time.Millisecond)
	m.ObserveHTTP("GET", "/api/orders/:id", 404, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.Registry(), "test_http_requests_total"))
}
