package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, order_type, status, customer_supplier, notes, items, total_value, inventory_processed, created_at, updated_at`

// OrderRepo implementación de OrderRepository sobre PostgreSQL. Las líneas viven en orders.items (JSONB).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la orden y asigna su ID.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	query := `
		INSERT INTO orders (order_number, order_type, status, customer_supplier, notes, items, total_value, inventory_processed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err = r.q.QueryRow(ctx, query,
		o.OrderNumber, string(o.Type), string(o.Status), o.CustomerSupplier, o.Notes,
		items, o.TotalValue, o.InventoryProcessed, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden. (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetByIDForUpdate obtiene la orden bloqueando su fila hasta el fin de la tx.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error {
	cmd, err := r.q.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepo) SetInventoryProcessed(ctx context.Context, id int64, processed bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE orders SET inventory_processed = $2, updated_at = now() WHERE id = $1`, id, processed)
	if err != nil {
		return fmt.Errorf("set inventory_processed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepo) ExistsByNumber(ctx context.Context, orderNumber string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)`, orderNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order number: %w", err)
	}
	return exists, nil
}

func (r *OrderRepo) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders WHERE starts_with(order_number, $1)`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count order numbers: %w", err)
	}
	return n, nil
}

func (r *OrderRepo) ListUnprocessedCompleted(ctx context.Context) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = 'completed' AND inventory_processed = false
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o         entity.Order
		orderType string
		status    string
		items     []byte
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &orderType, &status, &o.CustomerSupplier, &o.Notes,
		&items, &o.TotalValue, &o.InventoryProcessed, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Type = entity.OrderType(orderType)
	o.Status = entity.OrderStatus(status)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items de orden %d: %w", o.ID, err)
		}
	}
	return &o, nil
}
