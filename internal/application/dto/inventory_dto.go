package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// StockDemandRequest una demanda del chequeo previo de stock.
type StockDemandRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// ValidateStockRequest body para POST /api/inventory/validate.
type ValidateStockRequest struct {
	Items []StockDemandRequest `json:"items"`
}

// ValidateStockResponse resultado del chequeo previo.
type ValidateStockResponse struct {
	OK       bool     `json:"ok"`
	Failures []string `json:"failures"`
}

// TransactionResponse salida de una transacción de inventario.
type TransactionResponse struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"product_id"`
	OrderID          *int64          `json:"order_id"`
	TransactionType  string          `json:"transaction_type"`
	QuantityChange   int64           `json:"quantity_change"`
	PreviousQuantity int64           `json:"previous_quantity"`
	NewQuantity      int64           `json:"new_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReferenceNumber  string          `json:"reference_number"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransactionListResponse historial de un producto.
type TransactionListResponse struct {
	ProductID   int64                 `json:"product_id"`
	ProductName string                `json:"product_name"`
	Items       []TransactionResponse `json:"items"`
}

// LowStockAlertDTO producto en o por debajo de su nivel mínimo.
type LowStockAlertDTO struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Category      string `json:"category"`
	Quantity      int64  `json:"quantity"`
	MinStockLevel int64  `json:"min_stock_level"`
	Deficit       int64  `json:"deficit"` // MinStockLevel - Quantity
}

// ProductReconciliationDTO verificación del invariante quantity == Σ quantity_change.
type ProductReconciliationDTO struct {
	ProductID  int64 `json:"product_id"`
	Quantity   int64 `json:"quantity"`
	LedgerSum  int64 `json:"ledger_sum"`
	Drift      int64 `json:"drift"`
	Consistent bool  `json:"consistent"`
}

// ToTransactionResponse mapea la entidad a su salida HTTP.
func ToTransactionResponse(tx *entity.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:               tx.ID,
		ProductID:        tx.ProductID,
		OrderID:          tx.OrderID,
		TransactionType:  tx.TransactionType,
		QuantityChange:   tx.QuantityChange,
		PreviousQuantity: tx.PreviousQuantity,
		NewQuantity:      tx.NewQuantity,
		UnitPrice:        tx.UnitPrice,
		ReferenceNumber:  tx.ReferenceNumber,
		Notes:            tx.Notes,
		CreatedAt:        tx.CreatedAt,
	}
}
