package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/jhoicas/shop-api/internal/application/dto"
	"github.com/jhoicas/shop-api/internal/domain"
)

// apiError error con status y código ya decididos por el handler.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.message }

func newAPIError(status int, code, message string) error {
	return &apiError{status: status, code: code, message: message}
}

func notFound(message string) error {
	return newAPIError(fiber.StatusNotFound, "NOT_FOUND", message)
}

// NewErrorHandler devuelve el fiber.ErrorHandler de la API: errores de dominio a status
// deterministas y cuerpo dto.ErrorResponse. Los errores inesperados se registran y se
// responden sin detalles.
func NewErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code, msg := resolveError(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", status).
				Msg("error no controlado")
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
	}
}

func resolveError(err error) (int, string, string) {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status, ae.code, ae.message
	}
	// Errores propios de Fiber (ruta inexistente, método no permitido, body demasiado grande).
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, statusCode(fe.Code), fe.Message
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "UNAUTHENTICATED", "token ausente o inválido"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", "rol sin permiso para esta operación"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "usuario o contraseña inválidos"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", "entrada inválida"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", "el recurso está en uso"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", "almacenamiento no disponible"
	}
	return fiber.StatusInternalServerError, "INTERNAL", "error interno"
}

// statusCode convierte 404 -> NOT_FOUND, 405 -> METHOD_NOT_ALLOWED, etc.
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(status), " ", "_"))
}
