package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

const (
	orderNumberPrefix = "ORD"
	// tiempo máximo de la publicación post-commit; el commit ya ocurrió y no se espera al broker
	defaultPublishTimeout = 2 * time.Second
)

// OrderUseCase flujo de guardado de órdenes: persiste el estado y concilia el inventario
// en la misma transacción. Si el ledger falla, la orden conserva su estado anterior.
type OrderUseCase struct {
	txRunner  appinventory.TxRunner
	ledger    InventoryLedger
	orderRepo repository.OrderRepository
	publisher StockEventPublisher
	recorder  appinventory.Recorder
	log       *logger.Logger
	now       func() time.Time

	publishTimeout time.Duration
}

// NewOrderUseCase construye el caso de uso. publisher, recorder y log pueden ser nil.
func NewOrderUseCase(
	txRunner appinventory.TxRunner,
	ledger InventoryLedger,
	orderRepo repository.OrderRepository,
	publisher StockEventPublisher,
	recorder appinventory.Recorder,
	log *logger.Logger,
) *OrderUseCase {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if recorder == nil {
		recorder = appinventory.NopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		orderRepo: orderRepo,
		publisher: publisher,
		recorder:  recorder,
		log:       log,
		now:       time.Now,

		publishTimeout: defaultPublishTimeout,
	}
}

// WithClock reemplaza el reloj (tests de numeración de órdenes).
func (uc *OrderUseCase) WithClock(now func() time.Time) *OrderUseCase {
	uc.now = now
	return uc
}

// WithPublishTimeout cambia el límite de la publicación de eventos tras el commit.
func (uc *OrderUseCase) WithPublishTimeout(d time.Duration) *OrderUseCase {
	uc.publishTimeout = d
	return uc
}

// GetByID obtiene una orden.
func (uc *OrderUseCase) GetByID(ctx context.Context, id int64) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	out := toOrderResponse(order)
	return &out, nil
}

// Create crea la orden. Si nace como completed se concilia en la misma transacción.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderStatusResponse, error) {
	order, err := newOrderFromRequest(in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	action := inventory.DecideAction("", order.Status, false)
	var result *appinventory.ReconcileResult

	err = uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		txLogRepo repository.InventoryTransactionRepository,
	) error {
		if order.OrderNumber == "" {
			number, err := uc.nextOrderNumber(ctx, orderRepo)
			if err != nil {
				return err
			}
			order.OrderNumber = number
		}
		exists, err := orderRepo.ExistsByNumber(ctx, order.OrderNumber)
		if err != nil {
			return domain.NewPersistenceError("check order number", err)
		}
		if exists {
			return domain.ErrDuplicate
		}
		if err := uc.preflight(ctx, productRepo, order, order.Status); err != nil {
			return err
		}
		now := uc.now()
		order.CreatedAt = now
		order.UpdatedAt = now
		if err := orderRepo.Create(ctx, order); err != nil {
			return domain.NewPersistenceError("create order", err)
		}
		result, err = uc.ledger.ReconcileInTx(ctx, orderRepo, productRepo, txLogRepo, order, "", order.Status)
		return err
	})
	if action != inventory.ActionNone {
		uc.recorder.RecordReconcile(action, result, err, time.Since(start))
	}
	if err != nil {
		uc.logFailure(err, order, "", order.Status)
		return nil, err
	}

	uc.afterCommit(ctx, result)
	return toStatusResponse(order, result), nil
}

// UpdateStatus cambia el estado de la orden y concilia el inventario atómicamente.
// Sin cambio de estado no se toca nada (protege contra reenvíos duplicados del formulario).
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID int64, status string) (*dto.OrderStatusResponse, error) {
	newStatus := entity.OrderStatus(strings.TrimSpace(status))
	if !newStatus.Valid() {
		return nil, domain.ErrInvalidInput
	}

	start := time.Now()
	action := inventory.ActionNone
	var (
		order     *entity.Order
		oldStatus entity.OrderStatus
		result    *appinventory.ReconcileResult
	)

	err := uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		txLogRepo repository.InventoryTransactionRepository,
	) error {
		var err error
		// Bloquea la fila de la orden: dos cambios de estado concurrentes se serializan.
		order, err = orderRepo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return domain.NewPersistenceError("get order", err)
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		oldStatus = order.Status
		if oldStatus == newStatus {
			result = &appinventory.ReconcileResult{OrderID: order.ID, OrderNumber: order.OrderNumber, Action: inventory.ActionNone}
			return nil
		}
		action = inventory.DecideAction(oldStatus, newStatus, order.InventoryProcessed)
		if action == inventory.ActionApply {
			if err := uc.preflight(ctx, productRepo, order, newStatus); err != nil {
				return err
			}
		}
		if err := orderRepo.UpdateStatus(ctx, order.ID, newStatus); err != nil {
			return domain.NewPersistenceError("update order status", err)
		}
		order.Status = newStatus
		order.UpdatedAt = uc.now()
		result, err = uc.ledger.ReconcileInTx(ctx, orderRepo, productRepo, txLogRepo, order, oldStatus, newStatus)
		return err
	})
	if action != inventory.ActionNone {
		uc.recorder.RecordReconcile(action, result, err, time.Since(start))
	}
	if err != nil {
		uc.logFailure(err, order, oldStatus, newStatus)
		return nil, err
	}

	uc.afterCommit(ctx, result)
	return toStatusResponse(order, result), nil
}

// ReprocessCompleted aplica el inventario de las órdenes completed que quedaron con
// inventory_processed = false. Cada orden va en su propia transacción; una falla no detiene el resto.
func (uc *OrderUseCase) ReprocessCompleted(ctx context.Context) (*dto.ReprocessResponse, error) {
	pending, err := uc.orderRepo.ListUnprocessedCompleted(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("list unprocessed orders", err)
	}
	out := &dto.ReprocessResponse{Total: len(pending), Items: make([]dto.ReprocessItemDTO, 0, len(pending))}
	for _, o := range pending {
		item := dto.ReprocessItemDTO{OrderID: o.ID, OrderNumber: o.OrderNumber}
		result, err := uc.ledger.Reconcile(ctx, o.ID, entity.OrderStatusCompleted, entity.OrderStatusCompleted)
		if err != nil {
			item.Error = err.Error()
			out.Failed++
			uc.log.Warn().Err(err).Int64("order_id", o.ID).Str("order_number", o.OrderNumber).
				Msg("reproceso de orden fallido")
		} else {
			item.Processed = result.Action == inventory.ActionApply
			item.Transactions = len(result.Transactions)
			out.Succeeded++
			uc.afterCommit(ctx, result)
		}
		out.Items = append(out.Items, item)
	}
	uc.log.Info().Int("total", out.Total).Int("succeeded", out.Succeeded).Int("failed", out.Failed).
		Msg("reproceso de órdenes completadas")
	return out, nil
}

// preflight chequeo de stock previo para salidas que se van a completar. Los productos se
// resuelven por nombre; los inexistentes se dejan al ledger, que los rechaza con ProductNotFound.
func (uc *OrderUseCase) preflight(ctx context.Context, productRepo repository.ProductRepository, order *entity.Order, newStatus entity.OrderStatus) error {
	if order.Type != entity.OrderTypeOutbound || newStatus != entity.OrderStatusCompleted || order.InventoryProcessed {
		return nil
	}
	var demands []appinventory.StockDemand
	index := make(map[int64]int)
	for _, line := range order.Items {
		product, err := productRepo.FindByName(ctx, line.Name)
		if err != nil {
			return domain.NewPersistenceError("find product by name", err)
		}
		if product == nil {
			continue
		}
		if i, ok := index[product.ID]; ok {
			demands[i].Quantity += line.Quantity
			continue
		}
		index[product.ID] = len(demands)
		demands = append(demands, appinventory.StockDemand{ProductID: product.ID, Quantity: line.Quantity})
	}
	if len(demands) == 0 {
		return nil
	}
	res, err := appinventory.NewStockValidator(productRepo).Validate(ctx, demands)
	if err != nil {
		return err
	}
	if !res.OK {
		return &domain.StockValidationError{Failures: res.Failures}
	}
	return nil
}

// nextOrderNumber genera ORD-YYYY-MM-NNN con el consecutivo del mes.
func (uc *OrderUseCase) nextOrderNumber(ctx context.Context, orderRepo repository.OrderRepository) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", orderNumberPrefix, uc.now().Format("2006-01"))
	count, err := orderRepo.CountByNumberPrefix(ctx, prefix)
	if err != nil {
		return "", domain.NewPersistenceError("count order numbers", err)
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}

// afterCommit publica eventos de stock y alertas de stock bajo. Los errores solo se registran.
func (uc *OrderUseCase) afterCommit(ctx context.Context, result *appinventory.ReconcileResult) {
	if result == nil || len(result.Transactions) == 0 {
		return
	}
	now := uc.now()
	names := make(map[int64]string, len(result.Products))
	var lowStock []LowStockEvent
	for _, p := range result.Products {
		names[p.ID] = p.Name
		if p.IsLowStock() {
			lowStock = append(lowStock, LowStockEvent{
				EventID:       uuid.New().String(),
				ProductID:     p.ID,
				ProductName:   p.Name,
				SKU:           p.SKU,
				Quantity:      p.Quantity,
				MinStockLevel: p.MinStockLevel,
				OccurredAt:    now,
			})
		}
	}
	events := make([]StockChangedEvent, 0, len(result.Transactions))
	for _, tx := range result.Transactions {
		events = append(events, StockChangedEvent{
			EventID:          uuid.New().String(),
			ProductID:        tx.ProductID,
			ProductName:      names[tx.ProductID],
			OrderID:          result.OrderID,
			OrderNumber:      result.OrderNumber,
			Action:           string(result.Action),
			TransactionType:  tx.TransactionType,
			QuantityChange:   tx.QuantityChange,
			PreviousQuantity: tx.PreviousQuantity,
			NewQuantity:      tx.NewQuantity,
			UnitPrice:        tx.UnitPrice,
			ReferenceNumber:  tx.ReferenceNumber,
			OccurredAt:       tx.CreatedAt,
		})
	}
	ctx, cancel := context.WithTimeout(ctx, uc.publishTimeout)
	defer cancel()
	if err := uc.publisher.PublishStockChanged(ctx, events); err != nil {
		uc.log.Error().Err(err).Int64("order_id", result.OrderID).Msg("publicar eventos de stock")
	}
	if len(lowStock) > 0 {
		if err := uc.publisher.PublishLowStock(ctx, lowStock); err != nil {
			uc.log.Error().Err(err).Int64("order_id", result.OrderID).Msg("publicar alertas de stock bajo")
		}
	}
}

func (uc *OrderUseCase) logFailure(err error, order *entity.Order, oldStatus, newStatus entity.OrderStatus) {
	ev := uc.log.Warn()
	if domain.IsPersistence(err) {
		ev = uc.log.Error()
	}
	if order != nil {
		ev = ev.Int64("order_id", order.ID).Str("order_number", order.OrderNumber)
	}
	ev.Err(err).Str("old_status", string(oldStatus)).Str("new_status", string(newStatus)).
		Msg("guardado de orden revertido")
}

func newOrderFromRequest(in dto.CreateOrderRequest) (*entity.Order, error) {
	orderType := entity.OrderType(strings.TrimSpace(in.OrderType))
	if !orderType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	status := entity.OrderStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = entity.OrderStatusPending
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	items := make([]entity.OrderLine, 0, len(in.Items))
	for _, it := range in.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" || it.Quantity <= 0 || it.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		items = append(items, entity.OrderLine{Name: name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	order := &entity.Order{
		OrderNumber:      strings.TrimSpace(in.OrderNumber),
		Type:             orderType,
		Status:           status,
		CustomerSupplier: strings.TrimSpace(in.CustomerSupplier),
		Notes:            in.Notes,
		Items:            items,
	}
	order.TotalValue = order.ComputeTotal()
	return order, nil
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderLineDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderLineDTO{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return dto.OrderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		OrderType:          string(o.Type),
		Status:             string(o.Status),
		CustomerSupplier:   o.CustomerSupplier,
		Notes:              o.Notes,
		Items:              items,
		TotalValue:         o.TotalValue,
		InventoryProcessed: o.InventoryProcessed,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func toStatusResponse(o *entity.Order, result *appinventory.ReconcileResult) *dto.OrderStatusResponse {
	summary := dto.ReconcileSummaryDTO{Action: string(inventory.ActionNone), Transactions: []dto.TransactionResponse{}}
	if result != nil {
		summary.Action = string(result.Action)
		for _, tx := range result.Transactions {
			summary.Transactions = append(summary.Transactions, dto.ToTransactionResponse(tx))
		}
		for _, p := range result.AutoProvisioned {
			summary.AutoProvisioned = append(summary.AutoProvisioned, p.ID)
		}
	}
	return &dto.OrderStatusResponse{Order: toOrderResponse(o), Inventory: summary}
}
