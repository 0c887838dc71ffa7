package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType dirección del movimiento de la orden.
type OrderType string

const (
	OrderTypeInbound  OrderType = "inbound"  // entrada de mercancía
	OrderTypeOutbound OrderType = "outbound" // salida de mercancía
)

// Valid indica si el tipo es uno de los conocidos.
func (t OrderType) Valid() bool {
	return t == OrderTypeInbound || t == OrderTypeOutbound
}

// Inverse devuelve el tipo opuesto (usado al revertir).
func (t OrderType) Inverse() OrderType {
	if t == OrderTypeInbound {
		return OrderTypeOutbound
	}
	return OrderTypeInbound
}

// OrderStatus estado del ciclo de vida de la orden.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid indica si el estado es uno de los conocidos.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderLine línea de la orden; Name se resuelve contra products.name.
type OrderLine struct {
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Total devuelve Quantity * UnitPrice.
func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Order representa una orden de entrada o salida.
// InventoryProcessed es true sii el ledger ya aplicó sus deltas y aún no los revirtió.
type Order struct {
	ID                 int64
	OrderNumber        string
	Type               OrderType
	Status             OrderStatus
	CustomerSupplier   string
	Notes              string
	Items              []OrderLine
	TotalValue         decimal.Decimal
	InventoryProcessed bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ComputeTotal suma el total de todas las líneas.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Total())
	}
	return total
}
