package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/shop-api/internal/application/auth"
	"github.com/jhoicas/shop-api/internal/application/dto"
	"github.com/jhoicas/shop-api/internal/domain"
	"github.com/jhoicas/shop-api/internal/domain/access"
)

// Locals keys para UserID y Role en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// Authorize aplica la política de la operación antes del handler.
// 401 UNAUTHENTICATED si falta o no verifica el token, 403 FORBIDDEN si el rol no alcanza.
// La causa concreta (expirado, firma, formato) solo va al log.
func Authorize(guard *auth.Guard, policy access.Policy, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := guard.Check(policy, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			log.Debug().Err(err).
				Str("path", c.Path()).
				Str("policy", policy.String()).
				Msg("acceso denegado")
			if errors.Is(err, domain.ErrForbidden) {
				AccessDecisionsTotal.WithLabelValues("forbidden").Inc()
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
			}
			AccessDecisionsTotal.WithLabelValues("unauthenticated").Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "token ausente o inválido"})
		}
		if id == nil {
			AccessDecisionsTotal.WithLabelValues("anonymous").Inc()
			return c.Next()
		}
		AccessDecisionsTotal.WithLabelValues("allowed").Inc()
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (vacío en rutas anónimas).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del token verificado.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
