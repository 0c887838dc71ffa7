package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

const txColumns = `id, product_id, order_id, transaction_type, quantity_change, previous_quantity, new_quantity, unit_price, reference_number, notes, created_at`

// InventoryTransactionRepo historial append-only sobre PostgreSQL (usable con pool o tx).
type InventoryTransactionRepo struct {
	q Querier
}

// NewInventoryTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepo {
	return &InventoryTransactionRepo{q: q}
}

// Append inserta el registro. created_at toma now() si viene vacío.
func (r *InventoryTransactionRepo) Append(ctx context.Context, tx *entity.InventoryTransaction) error {
	query := `
		INSERT INTO inventory_transactions (product_id, order_id, transaction_type, quantity_change, previous_quantity, new_quantity, unit_price, reference_number, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
		RETURNING id, created_at`
	var createdAt any
	if !tx.CreatedAt.IsZero() {
		createdAt = tx.CreatedAt
	}
	err := r.q.QueryRow(ctx, query,
		tx.ProductID, tx.OrderID, tx.TransactionType, tx.QuantityChange, tx.PreviousQuantity,
		tx.NewQuantity, tx.UnitPrice, tx.ReferenceNumber, tx.Notes, createdAt,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("append inventory transaction: %w", err)
	}
	return nil
}

// ListByProduct las más recientes primero.
func (r *InventoryTransactionRepo) ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.InventoryTransaction, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+txColumns+` FROM inventory_transactions WHERE product_id = $1 ORDER BY id DESC LIMIT $2`,
		productID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions by product: %w", err)
	}
	return collectTransactions(rows)
}

func (r *InventoryTransactionRepo) ListByOrder(ctx context.Context, orderID int64) ([]*entity.InventoryTransaction, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+txColumns+` FROM inventory_transactions WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions by order: %w", err)
	}
	return collectTransactions(rows)
}

func (r *InventoryTransactionRepo) SumByProduct(ctx context.Context, productID int64) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_change), 0) FROM inventory_transactions WHERE product_id = $1`,
		productID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

func collectTransactions(rows pgx.Rows) ([]*entity.InventoryTransaction, error) {
	defer rows.Close()
	var list []*entity.InventoryTransaction
	for rows.Next() {
		var t entity.InventoryTransaction
		if err := rows.Scan(&t.ID, &t.ProductID, &t.OrderID, &t.TransactionType, &t.QuantityChange,
			&t.PreviousQuantity, &t.NewQuantity, &t.UnitPrice, &t.ReferenceNumber, &t.Notes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
