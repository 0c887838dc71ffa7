package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// InventoryLedger interfaz del ledger que usa el flujo de órdenes.
// ReconcileInTx usa los repositorios del caller (misma transacción); si retorna error
// el caller debe hacer rollback de la orden también.
type InventoryLedger interface {
	ReconcileInTx(
		ctx context.Context,
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		txLogRepo repository.InventoryTransactionRepository,
		order *entity.Order,
		oldStatus, newStatus entity.OrderStatus,
	) (*appinventory.ReconcileResult, error)
	Reconcile(ctx context.Context, orderID int64, oldStatus, newStatus entity.OrderStatus) (*appinventory.ReconcileResult, error)
}

// StockChangedEvent se publica una vez por transacción de inventario confirmada.
type StockChangedEvent struct {
	EventID          string          `json:"event_id"`
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	OrderID          int64           `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	Action           string          `json:"action"`
	TransactionType  string          `json:"transaction_type"`
	QuantityChange   int64           `json:"quantity_change"`
	PreviousQuantity int64           `json:"previous_quantity"`
	NewQuantity      int64           `json:"new_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReferenceNumber  string          `json:"reference_number"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// LowStockEvent producto que quedó en o por debajo de su mínimo tras una conciliación.
type LowStockEvent struct {
	EventID       string    `json:"event_id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	SKU           string    `json:"sku"`
	Quantity      int64     `json:"quantity"`
	MinStockLevel int64     `json:"min_stock_level"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// StockEventPublisher publica eventos después del commit. Un error aquí nunca revierte la conciliación.
type StockEventPublisher interface {
	PublishStockChanged(ctx context.Context, events []StockChangedEvent) error
	PublishLowStock(ctx context.Context, events []LowStockEvent) error
}

// NopPublisher no publica nada (Kafka deshabilitado).
type NopPublisher struct{}

func (NopPublisher) PublishStockChanged(context.Context, []StockChangedEvent) error { return nil }
func (NopPublisher) PublishLowStock(context.Context, []LowStockEvent) error         { return nil }
