package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/shop-api/internal/application/dto"
	"github.com/jhoicas/shop-api/internal/domain"
	"github.com/jhoicas/shop-api/internal/domain/entity"
	"github.com/jhoicas/shop-api/internal/domain/repository"
)

// TokenEncoder es la parte del codec JWT que necesita el login.
type TokenEncoder interface {
	Encode(userID, role string, issuedAt time.Time) (string, error)
	TTL() time.Duration
}

// LoginObserver recibe el resultado de cada intento (métricas).
type LoginObserver func(result string)

// Resultados de login reportados al observer.
const (
	LoginSuccess = "success"
	LoginFailure = "invalid_credentials"
	LoginError   = "error"
)

// dummyHash se compara cuando el usuario no existe para que ambos fallos
// cuesten lo mismo.
var dummyHash = mustHash("shop-api-dummy-password")

func mustHash(pw string) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}

// AuthUseCase verifica credenciales contra el repositorio y emite access tokens.
type AuthUseCase struct {
	users    repository.UserRepository
	tokens   TokenEncoder
	log      zerolog.Logger
	now      func() time.Time
	observer LoginObserver
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, tokens TokenEncoder, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{
		users:    users,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
		observer: func(string) {},
	}
}

// WithObserver registra un observer de resultados de login.
func (uc *AuthUseCase) WithObserver(obs LoginObserver) *AuthUseCase {
	if obs != nil {
		uc.observer = obs
	}
	return uc
}

// Login verifica username/password y devuelve el usuario (sin password) con su token.
// Usuario inexistente y password incorrecta producen el mismo ErrInvalidCredentials.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := entity.NormalizeUsername(in.Username)

	user, err := uc.users.FindByUsername(ctx, username)
	if err != nil {
		uc.observer(LoginError)
		uc.log.Error().Err(err).Str("username", username).Msg("login: consulta de usuario")
		return nil, err
	}

	hash := dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(in.Password)); err != nil || user == nil {
		uc.observer(LoginFailure)
		uc.log.Warn().Str("username", username).Msg("login: credenciales inválidas")
		return nil, domain.ErrInvalidCredentials
	}

	issuedAt := uc.now()
	token, err := uc.tokens.Encode(user.ID, user.Role, issuedAt)
	if err != nil {
		uc.observer(LoginError)
		return nil, fmt.Errorf("emitir token: %w", err)
	}

	uc.observer(LoginSuccess)
	uc.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("login exitoso")
	return &dto.LoginResponse{
		User:      ToUserResponse(user),
		Token:     token,
		ExpiresAt: issuedAt.Add(uc.tokens.TTL()),
	}, nil
}

// HashPassword aplica bcrypt con el costo por defecto.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.ErrInvalidInput
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ToUserResponse convierte la entidad en su DTO público; el hash nunca sale.
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
