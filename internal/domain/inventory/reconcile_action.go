package inventory

import "github.com/jhoicas/wms-ledger/internal/domain/entity"

// Action resultado de la tabla de decisión de conciliación.
type Action string

const (
	ActionNone    Action = "none"
	ActionApply   Action = "apply"
	ActionReverse Action = "reverse"
)

// DecideAction aplica la tabla de decisión del ledger. Es la guarda de idempotencia:
//
//	newStatus == completed && !processed                         -> apply
//	oldStatus == completed && newStatus != completed && processed -> reverse
//	cualquier otro caso                                           -> none
func DecideAction(oldStatus, newStatus entity.OrderStatus, processed bool) Action {
	if newStatus == entity.OrderStatusCompleted && !processed {
		return ActionApply
	}
	if oldStatus == entity.OrderStatusCompleted && newStatus != entity.OrderStatusCompleted && processed {
		return ActionReverse
	}
	return ActionNone
}

// Delta devuelve el cambio firmado de cantidad para un tipo efectivo.
func Delta(t entity.OrderType, quantity int64) int64 {
	if t == entity.OrderTypeOutbound {
		return -quantity
	}
	return quantity
}
