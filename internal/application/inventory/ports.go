package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/wms-ledger/internal/domain/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. Garantiza atomicidad para el ledger.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		txLogRepo repository.InventoryTransactionRepository,
	) error) error
}

// Recorder recibe el resultado de cada conciliación ya confirmada (o fallida) para métricas.
type Recorder interface {
	RecordReconcile(action inventory.Action, result *ReconcileResult, err error, elapsed time.Duration)
}

// NopRecorder descarta todo.
type NopRecorder struct{}

func (NopRecorder) RecordReconcile(inventory.Action, *ReconcileResult, error, time.Duration) {}
