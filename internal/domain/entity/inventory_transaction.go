package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de inventario.
const (
	TransactionTypeInbound    = "inbound"
	TransactionTypeOutbound   = "outbound"
	TransactionTypeAdjustment = "adjustment"
)

// Sufijo de reference_number en las reversiones.
const ReversedSuffix = " (REVERSED)"

// InventoryTransaction registro de auditoría append-only.
// NewQuantity = PreviousQuantity + QuantityChange.
type InventoryTransaction struct {
	ID               int64
	ProductID        int64
	OrderID          *int64 // nil para ajustes manuales
	TransactionType  string
	QuantityChange   int64
	PreviousQuantity int64
	NewQuantity      int64
	UnitPrice        decimal.Decimal
	ReferenceNumber  string
	Notes            string
	CreatedAt        time.Time
}
