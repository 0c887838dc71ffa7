package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (catálogo).
type ProductRepository interface {
	// Create persiste el producto y asigna product.ID.
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// FindByNameForUpdate devuelve el producto de menor id con ese nombre exacto y bloquea su fila.
	// Devuelve (nil, nil) si no existe.
	FindByNameForUpdate(ctx context.Context, name string) (*entity.Product, error)
	// FindByName igual que FindByNameForUpdate pero sin bloqueo (lecturas previas).
	FindByName(ctx context.Context, name string) (*entity.Product, error)
	SetQuantity(ctx context.Context, id, quantity int64) error
	SKUExists(ctx context.Context, sku string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListLowStock productos con quantity <= min_stock_level, ordenados por déficit.
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
}
