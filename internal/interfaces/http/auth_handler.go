package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/shop-api/internal/application/auth"
	"github.com/jhoicas/shop-api/internal/application/dto"
	"github.com/jhoicas/shop-api/internal/domain"
)

// AuthHandler maneja el login.
type AuthHandler struct {
	uc             *auth.AuthUseCase
	legacyNotFound bool
}

// NewAuthHandler construye el handler de auth. Con legacyNotFound las credenciales
// inválidas responden 404 en lugar de 401.
func NewAuthHandler(uc *auth.AuthUseCase, legacyNotFound bool) *AuthHandler {
	return &AuthHandler{uc: uc, legacyNotFound: legacyNotFound}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /v1/users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		if h.legacyNotFound && errors.Is(err, domain.ErrInvalidCredentials) {
			return notFound("usuario o contraseña inválidos")
		}
		return err
	}
	return c.JSON(out)
}
