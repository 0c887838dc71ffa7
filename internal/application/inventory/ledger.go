package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// NotesPrefix prefijo de notes en las transacciones generadas por el ledger.
const NotesPrefix = "Automatic update from order completion: "

// ReconcileResult lo que una conciliación escribió. Vacío cuando Action es none.
type ReconcileResult struct {
	OrderID         int64
	OrderNumber     string
	Action          inventory.Action
	Transactions    []*entity.InventoryTransaction
	Products        []*entity.Product // estado final de cada producto tocado, en orden de aparición
	AutoProvisioned []*entity.Product
}

func (r *ReconcileResult) touch(p *entity.Product) {
	for i, existing := range r.Products {
		if existing.ID == p.ID {
			r.Products[i] = p
			return
		}
	}
	r.Products = append(r.Products, p)
}

// Ledger traduce transiciones de estado de una orden en mutaciones de cantidad de producto,
// con historial append-only y bandera de idempotencia (orders.inventory_processed).
type Ledger struct {
	txRunner TxRunner
	skuGen   *inventory.SKUGenerator
	recorder Recorder
	log      *logger.Logger
	now      func() time.Time
}

// NewLedger construye el ledger. recorder y log pueden ser nil.
func NewLedger(txRunner TxRunner, skuGen *inventory.SKUGenerator, recorder Recorder, log *logger.Logger) *Ledger {
	if skuGen == nil {
		skuGen = inventory.NewSKUGenerator(nil)
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{txRunner: txRunner, skuGen: skuGen, recorder: recorder, log: log, now: time.Now}
}

// WithClock reemplaza el reloj usado para created_at (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Reconcile abre su propia transacción, bloquea la orden y concilia. Para callers que ya
// persistieron el nuevo estado en otra unidad de trabajo (ej. reprocesos).
func (l *Ledger) Reconcile(ctx context.Context, orderID int64, oldStatus, newStatus entity.OrderStatus) (*ReconcileResult, error) {
	start := time.Now()
	action := inventory.ActionNone
	var result *ReconcileResult
	err := l.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		txLogRepo repository.InventoryTransactionRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return domain.NewPersistenceError("get order", err)
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		action = inventory.DecideAction(oldStatus, newStatus, order.InventoryProcessed)
		result, err = l.ReconcileInTx(ctx, orderRepo, productRepo, txLogRepo, order, oldStatus, newStatus)
		return err
	})
	l.recorder.RecordReconcile(action, result, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReconcileInTx concilia usando repositorios ya atados a la transacción del caller.
// Cualquier error deja al caller la obligación de hacer Rollback; nada se confirma parcialmente.
// order.InventoryProcessed solo se modifica si todas las líneas se aplicaron.
func (l *Ledger) ReconcileInTx(
	ctx context.Context,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	txLogRepo repository.InventoryTransactionRepository,
	order *entity.Order,
	oldStatus, newStatus entity.OrderStatus,
) (*ReconcileResult, error) {
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	result := &ReconcileResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Action:      inventory.DecideAction(oldStatus, newStatus, order.InventoryProcessed),
	}
	if result.Action == inventory.ActionNone {
		return result, nil
	}
	// Sin líneas no hay nada que mover; la bandera no cambia.
	if len(order.Items) == 0 {
		result.Action = inventory.ActionNone
		return result, nil
	}

	effective := order.Type
	reference := order.OrderNumber
	processed := true
	if result.Action == inventory.ActionReverse {
		effective = order.Type.Inverse()
		reference += entity.ReversedSuffix
		processed = false
	}

	for i, line := range order.Items {
		if err := l.applyLine(ctx, productRepo, txLogRepo, order, line, effective, result, reference); err != nil {
			l.log.Warn().
				Err(err).
				Int64("order_id", order.ID).
				Str("order_number", order.OrderNumber).
				Str("action", string(result.Action)).
				Int("line", i).
				Msg("conciliación abortada")
			return nil, err
		}
	}

	if err := orderRepo.SetInventoryProcessed(ctx, order.ID, processed); err != nil {
		return nil, domain.NewPersistenceError("set inventory_processed", err)
	}
	order.InventoryProcessed = processed

	l.log.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("action", string(result.Action)).
		Int("lines", len(order.Items)).
		Int("auto_provisioned", len(result.AutoProvisioned)).
		Msg("inventario conciliado")
	return result, nil
}

// applyLine resuelve el producto (bloqueando su fila), valida el piso de stock,
// persiste la nueva cantidad y agrega la transacción de auditoría.
func (l *Ledger) applyLine(
	ctx context.Context,
	productRepo repository.ProductRepository,
	txLogRepo repository.InventoryTransactionRepository,
	order *entity.Order,
	line entity.OrderLine,
	effective entity.OrderType,
	result *ReconcileResult,
	reference string,
) error {
	if line.Quantity <= 0 {
		return fmt.Errorf("línea %q con cantidad %d: %w", line.Name, line.Quantity, domain.ErrInvalidInput)
	}
	product, err := productRepo.FindByNameForUpdate(ctx, line.Name)
	if err != nil {
		return domain.NewPersistenceError("find product by name", err)
	}
	if product == nil {
		// Solo una entrada aplicada puede crear productos; reversiones y salidas exigen que exista.
		if result.Action != inventory.ActionApply || order.Type != entity.OrderTypeInbound {
			return &domain.ProductNotFoundError{Name: line.Name}
		}
		product, err = l.provision(ctx, productRepo, line)
		if err != nil {
			return err
		}
		result.AutoProvisioned = append(result.AutoProvisioned, product)
	}

	delta := inventory.Delta(effective, line.Quantity)
	previous := product.Quantity
	newQty := previous + delta
	if newQty < 0 {
		return &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   previous,
			Requested:   line.Quantity,
		}
	}
	if err := productRepo.SetQuantity(ctx, product.ID, newQty); err != nil {
		return domain.NewPersistenceError("set product quantity", err)
	}
	product.Quantity = newQty

	orderID := order.ID
	tx := &entity.InventoryTransaction{
		ProductID:        product.ID,
		OrderID:          &orderID,
		TransactionType:  string(effective),
		QuantityChange:   delta,
		PreviousQuantity: previous,
		NewQuantity:      newQty,
		UnitPrice:        line.UnitPrice,
		ReferenceNumber:  reference,
		Notes:            NotesPrefix + reference,
		CreatedAt:        l.now(),
	}
	if err := txLogRepo.Append(ctx, tx); err != nil {
		return domain.NewPersistenceError("append inventory transaction", err)
	}
	result.Transactions = append(result.Transactions, tx)
	result.touch(product)

	l.log.Debug().
		Int64("product_id", product.ID).
		Str("product", product.Name).
		Int64("change", delta).
		Int64("previous", previous).
		Int64("new", newQty).
		Str("reference", reference).
		Msg("stock actualizado")
	return nil
}

// provision crea el producto desconocido de una orden de entrada con cantidad 0.
func (l *Ledger) provision(ctx context.Context, productRepo repository.ProductRepository, line entity.OrderLine) (*entity.Product, error) {
	sku, err := l.skuGen.Generate(ctx, productRepo, line.Name, entity.AutoGeneratedCategory)
	if err != nil {
		return nil, domain.NewPersistenceError("generate sku", err)
	}
	now := l.now()
	product := &entity.Product{
		Name:          line.Name,
		SKU:           sku,
		Description:   entity.AutoGeneratedDescription,
		Category:      entity.AutoGeneratedCategory,
		Quantity:      0,
		Price:         line.UnitPrice,
		MinStockLevel: entity.AutoGeneratedMinStockLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := productRepo.Create(ctx, product); err != nil {
		return nil, domain.NewPersistenceError("create auto-provisioned product", err)
	}
	l.log.Info().Int64("product_id", product.ID).Str("sku", sku).Str("product", product.Name).
		Msg("producto auto-creado desde orden de entrada")
	return product, nil
}
