package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para órdenes.
type OrderRepository interface {
	// Create persiste la orden y asigna order.ID.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	// GetByIDForUpdate obtiene la orden y bloquea su fila (SELECT FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error
	SetInventoryProcessed(ctx context.Context, id int64, processed bool) error
	ExistsByNumber(ctx context.Context, orderNumber string) (bool, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
	// ListUnprocessedCompleted órdenes completed con inventory_processed = false.
	ListUnprocessedCompleted(ctx context.Context) ([]*entity.Order, error)
}
