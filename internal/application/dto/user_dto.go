package dto

import "time"

// CreateUserRequest alta pública de usuario; el rol siempre es employee.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// UpdateUserRequest cambios administrativos. ID opcional; si viene debe coincidir con la ruta.
type UpdateUserRequest struct {
	ID       string  `json:"id"`
	Username *string `json:"username" validate:"omitempty,min=3,max=20"`
	Password *string `json:"password" validate:"omitempty,min=4,max=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=employee manager"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest credenciales de login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse usuario autenticado más su access token.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}
