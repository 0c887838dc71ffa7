package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, sku, description, category, quantity, price, min_stock_level, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y asigna su ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, sku, description, category, quantity, price, min_stock_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.Name, product.SKU, product.Description, product.Category, product.Quantity,
		product.Price, product.MinStockLevel, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// FindByNameForUpdate bloquea la fila del producto de menor id con ese nombre.
// Antes toma un advisory lock de transacción sobre el nombre: FOR UPDATE no bloquea nada
// cuando la fila aún no existe, y dos entradas concurrentes crearían el producto dos veces.
func (r *ProductRepo) FindByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
		return nil, fmt.Errorf("lock product name: %w", err)
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 ORDER BY id LIMIT 1 FOR UPDATE`
	p, err := scanProduct(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("lock product by name: %w", err)
	}
	return p, nil
}

// FindByName igual que FindByNameForUpdate sin bloqueo.
func (r *ProductRepo) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 ORDER BY id LIMIT 1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("find product by name: %w", err)
	}
	return p, nil
}

// SetQuantity fija la cantidad. El CHECK (quantity >= 0) de la tabla es la última barrera.
func (r *ProductRepo) SetQuantity(ctx context.Context, id, quantity int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("set quantity %d: %w", quantity, domain.ErrInsufficientStock)
		}
		return fmt.Errorf("set product quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// SKUExists indica si el SKU ya está tomado.
func (r *ProductRepo) SKUExists(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)`, sku).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sku: %w", err)
	}
	return exists, nil
}

// List lista productos por id con paginación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

// ListLowStock productos en o por debajo del mínimo, el mayor déficit primero.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE quantity <= min_stock_level
		ORDER BY (min_stock_level - quantity) DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return collectProducts(rows)
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Category, &p.Quantity,
		&p.Price, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
