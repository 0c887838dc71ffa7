package inventory

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// QueryUseCase consultas de solo lectura sobre el ledger: historial, alertas de stock bajo
// y verificación del invariante quantity == Σ quantity_change.
type QueryUseCase struct {
	products repository.ProductRepository
	txLog    repository.InventoryTransactionRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(products repository.ProductRepository, txLog repository.InventoryTransactionRepository) *QueryUseCase {
	return &QueryUseCase{products: products, txLog: txLog}
}

// History devuelve las transacciones más recientes del producto.
func (uc *QueryUseCase) History(ctx context.Context, productID int64, limit int) (*dto.TransactionListResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	list, err := uc.txLog.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, tx := range list {
		items = append(items, dto.ToTransactionResponse(tx))
	}
	return &dto.TransactionListResponse{
		ProductID:   product.ID,
		ProductName: product.Name,
		Items:       items,
	}, nil
}

// LowStock productos en o por debajo de su nivel mínimo, el mayor déficit primero.
func (uc *QueryUseCase) LowStock(ctx context.Context) ([]dto.LowStockAlertDTO, error) {
	list, err := uc.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockAlertDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toLowStockAlert(p))
	}
	return out, nil
}

// CheckProduct compara la cantidad del producto con la suma de su historial.
// Drift distinto de cero indica cambios hechos fuera del ledger (ej. cantidad inicial por formulario).
func (uc *QueryUseCase) CheckProduct(ctx context.Context, productID int64) (*dto.ProductReconciliationDTO, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	sum, err := uc.txLog.SumByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.ProductReconciliationDTO{
		ProductID:  product.ID,
		Quantity:   product.Quantity,
		LedgerSum:  sum,
		Drift:      product.Quantity - sum,
		Consistent: product.Quantity == sum,
	}, nil
}

func toLowStockAlert(p *entity.Product) dto.LowStockAlertDTO {
	return dto.LowStockAlertDTO{
		ProductID:     p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Category:      p.Category,
		Quantity:      p.Quantity,
		MinStockLevel: p.MinStockLevel,
		Deficit:       p.MinStockLevel - p.Quantity,
	}
}
