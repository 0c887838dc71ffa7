package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineDTO línea de orden en requests y respuestas.
type OrderLineDTO struct {
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest body para POST /api/orders. OrderNumber vacío = se genera ORD-YYYY-MM-NNN.
type CreateOrderRequest struct {
	OrderNumber      string         `json:"order_number"`
	OrderType        string         `json:"order_type" validate:"required,oneof=inbound outbound"`
	Status           string         `json:"status"`
	CustomerSupplier string         `json:"customer_supplier"`
	Notes            string         `json:"notes"`
	Items            []OrderLineDTO `json:"items" validate:"required,min=1"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID                 int64           `json:"id"`
	OrderNumber        string          `json:"order_number"`
	OrderType          string          `json:"order_type"`
	Status             string          `json:"status"`
	CustomerSupplier   string          `json:"customer_supplier"`
	Notes              string          `json:"notes"`
	Items              []OrderLineDTO  `json:"items"`
	TotalValue         decimal.Decimal `json:"total_value"`
	InventoryProcessed bool            `json:"inventory_processed"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ReconcileSummaryDTO resumen de lo que movió el ledger en la petición.
type ReconcileSummaryDTO struct {
	Action          string                `json:"action"`
	Transactions    []TransactionResponse `json:"transactions"`
	AutoProvisioned []int64               `json:"auto_provisioned_product_ids,omitempty"`
}

// OrderStatusResponse respuesta de creación o cambio de estado.
type OrderStatusResponse struct {
	Order     OrderResponse       `json:"order"`
	Inventory ReconcileSummaryDTO `json:"inventory"`
}

// ReprocessItemDTO resultado por orden del reproceso.
type ReprocessItemDTO struct {
	OrderID      int64  `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	Processed    bool   `json:"processed"`
	Transactions int    `json:"transactions"`
	Error        string `json:"error,omitempty"`
}

// ReprocessResponse resultado del reproceso de órdenes completadas sin procesar.
type ReprocessResponse struct {
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Items     []ReprocessItemDTO `json:"items"`
}
