package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger registra cada petición con método, ruta, status y latencia. Usa el request id que
// deja el middleware requestid de Fiber (cabecera X-Request-ID) y lo inyecta en el contexto para
// que los logs de los casos de uso lo hereden vía zerolog.Ctx.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid := c.GetRespHeader(fiber.HeaderXRequestID)

		reqLog := log.With().Str("request_id", rid).Logger()
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = reqLog.Error()
		case status >= fiber.StatusBadRequest:
			event = reqLog.Warn()
		default:
			event = reqLog.Info()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return err
	}
}
