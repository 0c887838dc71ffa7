package memory

import "errors"

// Violaciones de restricciones que en Postgres darían CHECK/UNIQUE/FK.
var (
	errProductMissing          = errors.New("memory: producto inexistente")
	errOrderMissing            = errors.New("memory: orden inexistente")
	errNegativeQuantity        = errors.New("memory: quantity no puede ser negativa")
	errDuplicateOrderNumber    = errors.New("memory: order_number duplicado")
	errInconsistentTransaction = errors.New("memory: new_quantity != previous_quantity + quantity_change")
)
