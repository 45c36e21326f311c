package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/shop-api/internal/application/auth"
	"github.com/jhoicas/shop-api/internal/application/dto"
	"github.com/jhoicas/shop-api/internal/domain"
	"github.com/jhoicas/shop-api/internal/domain/entity"
	"github.com/jhoicas/shop-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// Register da de alta un usuario público. El rol se fuerza a employee;
// los managers se crean con cmd/seed_manager o promoviendo vía Update.
func (uc *UserUseCase) Register(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	return uc.create(ctx, in.Username, in.Password, entity.RoleEmployee)
}

// CreateWithRole crea un usuario con un rol explícito (bootstrap de managers).
func (uc *UserUseCase) CreateWithRole(ctx context.Context, username, password, role string) (*dto.UserResponse, error) {
	if !entity.IsValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	return uc.create(ctx, username, password, role)
}

func (uc *UserUseCase) create(ctx context.Context, username, password, role string) (*dto.UserResponse, error) {
	username = entity.NormalizeUsername(username)
	if !entity.IsValidUsername(username) || password == "" {
		return nil, domain.ErrInvalidInput
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	out := auth.ToUserResponse(user)
	return &out, nil
}

// GetByID obtiene un usuario por ID; (nil, nil) si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	out := auth.ToUserResponse(user)
	return &out, nil
}

// Update modifica username, password y/o rol. (nil, nil) si no existe.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if in.Username != nil {
		user.Username = entity.NormalizeUsername(*in.Username)
		if !entity.IsValidUsername(user.Username) {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if in.Role != nil {
		if !entity.IsValidRole(*in.Role) {
			return nil, domain.ErrInvalidInput
		}
		user.Role = *in.Role
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	out := auth.ToUserResponse(user)
	return &out, nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, auth.ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un usuario; domain.ErrNotFound si no existe.
func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
