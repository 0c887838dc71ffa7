package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// StockDemand cantidad solicitada de un producto.
type StockDemand struct {
	ProductID int64
	Quantity  int64
}

// ValidationResult resultado del chequeo previo. OK es false si hay al menos un fallo.
type ValidationResult struct {
	OK       bool
	Failures []string
}

// StockValidator chequeo de suficiencia de stock de solo lectura. Da feedback inmediato antes de
// completar una orden de salida; no reemplaza la validación por línea del Ledger, que es la autoritativa.
type StockValidator struct {
	products repository.ProductRepository
}

// NewStockValidator construye el validador. Pasar un repo atado a la tx si se usa dentro de una.
func NewStockValidator(products repository.ProductRepository) *StockValidator {
	return &StockValidator{products: products}
}

// Validate revisa cada demanda contra la cantidad actual del producto. No modifica nada.
func (v *StockValidator) Validate(ctx context.Context, demands []StockDemand) (*ValidationResult, error) {
	result := &ValidationResult{OK: true, Failures: []string{}}
	for _, d := range demands {
		product, err := v.products.GetByID(ctx, d.ProductID)
		if err != nil {
			return nil, domain.NewPersistenceError("get product", err)
		}
		if product == nil {
			result.OK = false
			result.Failures = append(result.Failures, fmt.Sprintf("producto %d no encontrado", d.ProductID))
			continue
		}
		if product.Quantity < d.Quantity {
			result.OK = false
			result.Failures = append(result.Failures, (&domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   d.Quantity,
			}).Error())
		}
	}
	return result, nil
}
