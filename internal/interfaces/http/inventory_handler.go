package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/application/inventory"
)

// InventoryHandler consultas del ledger y chequeo previo de stock (protegido).
type InventoryHandler struct {
	query     *inventory.QueryUseCase
	validator *inventory.StockValidator
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(query *inventory.QueryUseCase, validator *inventory.StockValidator) *InventoryHandler {
	return &InventoryHandler{query: query, validator: validator}
}

// ValidateStock godoc
// @Summary      Chequeo previo de stock (solo lectura)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateStockRequest  true  "product_id y quantity por línea"
// @Success      200   {object}  dto.ValidateStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/validate [post]
func (h *InventoryHandler) ValidateStock(c *fiber.Ctx) error {
	var in dto.ValidateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	demands := make([]inventory.StockDemand, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y quantity deben ser positivos"})
		}
		demands = append(demands, inventory.StockDemand{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.validator.Validate(c.UserContext(), demands)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ValidateStockResponse{OK: res.OK, Failures: res.Failures})
}

// History godoc
// @Summary      Historial de transacciones de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   int  true   "ID del producto"
// @Param        limit  query  int  false  "Límite (máx 500)"  default(50)
// @Success      200    {object}  dto.TransactionListResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/transactions [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.query.History(c.UserContext(), id, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconciliation godoc
// @Summary      Verifica quantity contra la suma del historial
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProductReconciliationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconciliation [get]
func (h *InventoryHandler) Reconciliation(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.query.CheckProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en o por debajo del nivel mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.query.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"items": list,
	})
}
