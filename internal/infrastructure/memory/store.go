package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// Store almacenamiento en memoria con transacciones serializadas por snapshot.
// Run trabaja sobre una copia y solo la publica si fn no devuelve error.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	products   map[int64]*entity.Product
	productSeq int64
	orders     map[int64]*entity.Order
	orderSeq   int64
	txs        []*entity.InventoryTransaction
	txSeq      int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: &state{
		products: make(map[int64]*entity.Product),
		orders:   make(map[int64]*entity.Order),
	}}
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return &ProductRepository{v: view{store: s}} }

// Orders repositorio de órdenes fuera de transacción.
func (s *Store) Orders() repository.OrderRepository { return &OrderRepository{v: view{store: s}} }

// Transactions historial de inventario fuera de transacción.
func (s *Store) Transactions() repository.InventoryTransactionRepository {
	return &InventoryTransactionRepository{v: view{store: s}}
}

// Run ejecuta fn con repositorios atados a una copia del estado. Commit si fn devuelve nil.
// Las transacciones se serializan con el mutex del store, equivalente a bloquear todas las filas.
func (s *Store) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	txLogRepo repository.InventoryTransactionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	v := view{store: s, tx: work}
	if err := fn(&OrderRepository{v: v}, &ProductRepository{v: v}, &InventoryTransactionRepository{v: v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (st *state) clone() *state {
	out := &state{
		products:   make(map[int64]*entity.Product, len(st.products)),
		productSeq: st.productSeq,
		orders:     make(map[int64]*entity.Order, len(st.orders)),
		orderSeq:   st.orderSeq,
		txs:        make([]*entity.InventoryTransaction, len(st.txs)),
		txSeq:      st.txSeq,
	}
	for id, p := range st.products {
		out.products[id] = copyProduct(p)
	}
	for id, o := range st.orders {
		out.orders[id] = copyOrder(o)
	}
	// las transacciones son inmutables; basta copiar el slice
	copy(out.txs, st.txs)
	return out
}

// view resuelve sobre qué estado opera un repositorio: la copia de la tx o el estado
// publicado (con lock por operación).
type view struct {
	store *Store
	tx    *state
}

func (v view) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

// ProductRepository implementación en memoria de repository.ProductRepository.
type ProductRepository struct {
	v view
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.v.do(ctx, func(st *state) error {
		st.productSeq++
		p.ID = st.productSeq
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(ctx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

// FindByNameForUpdate en memoria el bloqueo ya lo da Run.
func (r *ProductRepository) FindByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	return r.FindByName(ctx, name)
}

func (r *ProductRepository) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.Name == name && (out == nil || p.ID < out.ID) {
				out = p
			}
		}
		if out != nil {
			out = copyProduct(out)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) SetQuantity(ctx context.Context, id, quantity int64) error {
	return r.v.do(ctx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return errProductMissing
		}
		if quantity < 0 {
			return errNegativeQuantity
		}
		p.Quantity = quantity
		return nil
	})
}

func (r *ProductRepository) SKUExists(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.v.do(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do(ctx, func(st *state) error {
		all := sortedProducts(st)
		if offset >= len(all) {
			return nil
		}
		all = all[offset:]
		if limit > 0 && limit < len(all) {
			all = all[:limit]
		}
		for _, p := range all {
			out = append(out, copyProduct(p))
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do(ctx, func(st *state) error {
		for _, p := range sortedProducts(st) {
			if p.IsLowStock() {
				out = append(out, copyProduct(p))
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].MinStockLevel-out[i].Quantity > out[j].MinStockLevel-out[j].Quantity
		})
		return nil
	})
	return out, err
}

// OrderRepository implementación en memoria de repository.OrderRepository.
type OrderRepository struct {
	v view
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	return r.v.do(ctx, func(st *state) error {
		for _, existing := range st.orders {
			if existing.OrderNumber == o.OrderNumber {
				return errDuplicateOrderNumber
			}
		}
		st.orderSeq++
		o.ID = st.orderSeq
		st.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	var out *entity.Order
	err := r.v.do(ctx, func(st *state) error {
		if o, ok := st.orders[id]; ok {
			out = copyOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error {
	return r.v.do(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return errOrderMissing
		}
		o.Status = status
		return nil
	})
}

func (r *OrderRepository) SetInventoryProcessed(ctx context.Context, id int64, processed bool) error {
	return r.v.do(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return errOrderMissing
		}
		o.InventoryProcessed = processed
		return nil
	})
}

func (r *OrderRepository) ExistsByNumber(ctx context.Context, orderNumber string) (bool, error) {
	var exists bool
	err := r.v.do(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.OrderNumber == orderNumber {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r *OrderRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.v.do(ctx, func(st *state) error {
		for _, o := range st.orders {
			if strings.HasPrefix(o.OrderNumber, prefix) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *OrderRepository) ListUnprocessedCompleted(ctx context.Context) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.v.do(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.Status == entity.OrderStatusCompleted && !o.InventoryProcessed {
				out = append(out, copyOrder(o))
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

// InventoryTransactionRepository historial append-only en memoria.
type InventoryTransactionRepository struct {
	v view
}

func (r *InventoryTransactionRepository) Append(ctx context.Context, tx *entity.InventoryTransaction) error {
	return r.v.do(ctx, func(st *state) error {
		if tx.NewQuantity != tx.PreviousQuantity+tx.QuantityChange {
			return errInconsistentTransaction
		}
		st.txSeq++
		tx.ID = st.txSeq
		c := *tx
		st.txs = append(st.txs, &c)
		return nil
	})
}

func (r *InventoryTransactionRepository) ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.InventoryTransaction, error) {
	var out []*entity.InventoryTransaction
	err := r.v.do(ctx, func(st *state) error {
		for i := len(st.txs) - 1; i >= 0; i-- {
			if st.txs[i].ProductID != productID {
				continue
			}
			c := *st.txs[i]
			out = append(out, &c)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *InventoryTransactionRepository) ListByOrder(ctx context.Context, orderID int64) ([]*entity.InventoryTransaction, error) {
	var out []*entity.InventoryTransaction
	err := r.v.do(ctx, func(st *state) error {
		for _, tx := range st.txs {
			if tx.OrderID != nil && *tx.OrderID == orderID {
				c := *tx
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

func (r *InventoryTransactionRepository) SumByProduct(ctx context.Context, productID int64) (int64, error) {
	var sum int64
	err := r.v.do(ctx, func(st *state) error {
		for _, tx := range st.txs {
			if tx.ProductID == productID {
				sum += tx.QuantityChange
			}
		}
		return nil
	})
	return sum, err
}

func sortedProducts(st *state) []*entity.Product {
	out := make([]*entity.Product, 0, len(st.products))
	for _, p := range st.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = append([]entity.OrderLine(nil), o.Items...)
	return &c
}
