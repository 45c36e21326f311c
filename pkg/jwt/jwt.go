package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Errores de decodificación. Se distinguen con errors.Is aunque la capa HTTP
// los colapse en un único 401.
var (
	ErrMalformed    = errors.New("jwt: token mal formado")
	ErrBadSignature = errors.New("jwt: firma inválida")
	ErrExpired      = errors.New("jwt: token expirado")
)

// tokenClaims es el layout firmado: claims estándar + user_id y role.
// Role va en claro; solo el vínculo identidad-rol necesita ser inalterable.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Claims es el resultado de un Decode exitoso.
type Claims struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Config parámetros del codec. Secret y TTL llegan desde configuración.
type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Codec firma y verifica access tokens HS256 con un secreto compartido.
// Es inmutable tras NewCodec y seguro para uso concurrente.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option ajusta el Codec al construirlo.
type Option func(*Codec)

// WithClock reemplaza el reloj usado para validar la expiración.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec valida la configuración y construye el codec.
func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("jwt: ttl debe ser positivo")
	}
	c := &Codec{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL devuelve la vida útil configurada.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode genera un token firmado para userID y role, expirando issuedAt+TTL.
// Es determinista: mismas entradas y mismo secreto producen el mismo token.
func (c *Codec) Encode(userID, role string, issuedAt time.Time) (string, error) {
	if userID == "" || role == "" {
		return "", fmt.Errorf("jwt: user_id y role son obligatorios")
	}
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		},
		UserID: userID,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: firmar token: %w", err)
	}
	return signed, nil
}

// Decode verifica firma y expiración y devuelve los claims.
// Errores: ErrMalformed, ErrBadSignature o ErrExpired (envueltos con la causa).
func (c *Codec) Decode(tokenString string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, classify(err)
	}
	if claims.UserID == "" || claims.Role == "" {
		return Claims{}, fmt.Errorf("%w: faltan user_id o role", ErrMalformed)
	}

	out := Claims{
		UserID:    claims.UserID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// classify traduce los errores de golang-jwt a los tres tipos del codec.
// El orden importa: la firma se verifica antes que los claims, así que un
// token expirado con firma incorrecta llega aquí como firma inválida.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
