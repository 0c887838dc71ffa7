package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categoría y mínimo usados cuando el ledger crea un producto desde una orden de entrada.
const (
	AutoGeneratedCategory      = "Auto-Generated"
	AutoGeneratedMinStockLevel = 5
	AutoGeneratedDescription   = "Auto-created from inbound order"
)

// Product representa un producto del almacén. Name es la llave de unión con las líneas de orden
// (no es única: gana el id más bajo). Quantity nunca es negativa.
type Product struct {
	ID            int64
	Name          string
	SKU           string // código único
	Description   string
	Category      string
	Quantity      int64
	Price         decimal.Decimal
	MinStockLevel int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica si la cantidad está en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStockLevel
}
