package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/domain"
)

// writeError traduce errores de dominio a status + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		insufficient *domain.InsufficientStockError
		notFound     *domain.ProductNotFoundError
		validation   *domain.StockValidationError
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "STOCK_VALIDATION", Message: validation.Error()}
	case errors.As(err, &insufficient):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: insufficient.Error()}
	case errors.As(err, &notFound):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: notFound.Error()}
	case errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "producto no encontrado"}
	case errors.Is(err, domain.ErrOrderNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "ORDER_NOT_FOUND", Message: "orden no encontrada"}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "número de orden ya existe"}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	default:
		// no exponer detalles de la base de datos
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

// paramID lee :id como int64 positivo.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
}
