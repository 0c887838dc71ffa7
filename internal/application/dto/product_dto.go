package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	MinStockLevel int64           `json:"min_stock_level"`
	LowStock      bool            `json:"low_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
