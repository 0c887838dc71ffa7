package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// HeaderRequestID se propaga si el cliente lo envía; si no, se genera.
const HeaderRequestID = "X-Request-ID"

// httpObserver recibe la duración de cada petición. Lo implementa *metrics.LedgerMetrics.
type httpObserver interface {
	ObserveHTTP(method, path string, status int, elapsed time.Duration)
}

// RequestLogger registra cada petición con zerolog y, si hay observer, alimenta las métricas HTTP.
// La etiqueta path es la ruta registrada (/api/orders/:id) para no disparar la cardinalidad.
func RequestLogger(log *logger.Logger, observer httpObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler de Fiber escriba la respuesta antes de leer el status
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		path := c.Route().Path

		if observer != nil {
			observer.ObserveHTTP(c.Method(), path, status, elapsed)
		}

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", path).
			Int("status", status).
			Dur("latency", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("http request")
		return nil
	}
}
