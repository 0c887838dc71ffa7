package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrOrderNotFound     = errors.New("orden no encontrada")
	ErrPersistence       = errors.New("error de persistencia")
	ErrStockValidation   = errors.New("validación de stock fallida")
)

// ProductNotFoundError: una orden de salida referencia un producto inexistente en el catálogo.
type ProductNotFoundError struct {
	Name string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %q no encontrado en inventario", e.Name)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError: la salida dejaría la cantidad del producto en negativo.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError envuelve una falla de almacenamiento; el caller debe hacer rollback.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError devuelve nil si err es nil.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// IsPersistence indica si err proviene del almacenamiento.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// StockValidationError agrupa los fallos del chequeo previo de stock.
type StockValidationError struct {
	Failures []string
}

func (e *StockValidationError) Error() string {
	return "validación de stock fallida: " + strings.Join(e.Failures, "; ")
}

func (e *StockValidationError) Unwrap() error { return ErrStockValidation }
