package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// HeaderIdempotencyKey header opcional para reintentos seguros de cambios de estado.
const HeaderIdempotencyKey = "Idempotency-Key"

// idempotencyReserver contrato mínimo que necesita el middleware. Lo implementa
// *redis.IdempotencyStore.
type idempotencyReserver interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// RequireIdempotency devuelve un middleware que reserva el Idempotency-Key antes del handler.
// Debe usarse DESPUÉS de AuthMiddleware (la llave se aísla por usuario).
//
// Comportamiento:
//   - Sin header: pasa sin reservar.
//   - 409 DUPLICATE_REQUEST: la llave ya fue usada.
//   - 503 IDEMPOTENCY_UNAVAILABLE: falla de infraestructura al reservar.
//   - Si el handler responde >= 400 la llave se libera para permitir el reintento.
func RequireIdempotency(store idempotencyReserver, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key

		ok, err := store.Reserve(c.UserContext(), scoped)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("reserva de idempotencia fallida")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_UNAVAILABLE",
				Message: "no se pudo verificar la llave de idempotencia, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "DUPLICATE_REQUEST",
				Message: "la petición con esta Idempotency-Key ya fue procesada",
			})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if relErr := store.Release(c.UserContext(), scoped); relErr != nil {
				log.Warn().Err(relErr).Str("key", key).Msg("no se pudo liberar la llave de idempotencia")
			}
		}
		return err
	}
}
