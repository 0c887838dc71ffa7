package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// InventoryTransactionRepository puerto append-only para el historial de inventario.
// No existe update ni delete.
type InventoryTransactionRepository interface {
	// Append persiste el registro y asigna tx.ID y tx.CreatedAt si vienen vacíos.
	Append(ctx context.Context, tx *entity.InventoryTransaction) error
	// ListByProduct devuelve las más recientes primero.
	ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.InventoryTransaction, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*entity.InventoryTransaction, error)
	// SumByProduct suma quantity_change de todas las transacciones del producto.
	SumByProduct(ctx context.Context, productID int64) (int64, error)
}
