package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID header de correlación; se respeta el del cliente si viene.
const HeaderRequestID = "X-Request-Id"

// LocalRequestID clave en c.Locals para el request id.
const LocalRequestID = "request_id"

// RequestLogger registra cada petición (método, ruta, status, latencia) con zerolog y
// alimenta las métricas HTTP. Los errores del handler se resuelven aquí con el
// ErrorHandler de la app para poder registrar el status final.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := utils.CopyString(c.Get(HeaderRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(LocalRequestID, reqID)
		c.Set(HeaderRequestID, reqID)

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path
		// c.Method() apunta a un buffer que Fiber reutiliza; la etiqueta de
		// Prometheus vive más que la petición.
		method := utils.CopyString(c.Method())

		observeRequest(method, route, status, latency.Seconds())

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("request_id", reqID).
			Str("method", method).
			Str("route", route).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency).
			Str("user_id", GetUserID(c)).
			Msg("http request")
		return nil
	}
}

// GetRequestID devuelve el request id asignado por RequestLogger.
func GetRequestID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRequestID).(string)
	return s
}
