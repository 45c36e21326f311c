package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/shop-api/internal/domain"
	"github.com/jhoicas/shop-api/internal/domain/access"
	"github.com/jhoicas/shop-api/pkg/jwt"
)

// TokenDecoder es la parte del codec JWT que necesita el guard.
type TokenDecoder interface {
	Decode(token string) (jwt.Claims, error)
}

// Identity es lo que el guard deja disponible a los handlers tras verificar.
type Identity struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// Guard decide si una petición entra según la política de la operación.
type Guard struct {
	tokens TokenDecoder
}

// NewGuard construye el guard con el decoder de tokens.
func NewGuard(tokens TokenDecoder) *Guard {
	return &Guard{tokens: tokens}
}

// Check evalúa la política contra el header Authorization.
//
//   - Política anónima: admite sin mirar el header; devuelve identidad nil.
//   - Header ausente, esquema distinto de Bearer o token inválido: ErrUnauthenticated
//     (envuelve la causa del codec para logs; no se expone al cliente).
//   - Rol fuera del conjunto: ErrForbidden junto con la identidad decodificada.
func (g *Guard) Check(policy access.Policy, authorization string) (*Identity, error) {
	if !policy.RequiresToken() {
		return nil, nil
	}

	token, err := bearerToken(authorization)
	if err != nil {
		return nil, err
	}

	claims, err := g.tokens.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	id := &Identity{UserID: claims.UserID, Role: claims.Role, ExpiresAt: claims.ExpiresAt}
	if !policy.Permits(claims.Role) {
		return id, fmt.Errorf("%w: rol %q no permitido (%s)", domain.ErrForbidden, claims.Role, policy)
	}
	return id, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: header Authorization requerido", domain.ErrUnauthenticated)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("%w: formato esperado Bearer <token>", domain.ErrUnauthenticated)
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("%w: token vacío", domain.ErrUnauthenticated)
	}
	return token, nil
}
