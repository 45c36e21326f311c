package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Roles válidos para User.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

// Longitud permitida del username, en caracteres tras normalizar.
const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
)

// User representa una cuenta que puede autenticarse en la tienda.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt, nunca se expone al cliente
	Role         string // employee, manager
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si role pertenece al conjunto cerrado de roles.
func IsValidRole(role string) bool {
	return role == RoleEmployee || role == RoleManager
}

// NormalizeUsername aplica NFC y recorta espacios. No cambia mayúsculas:
// la comparación sigue siendo exacta.
func NormalizeUsername(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// IsValidUsername valida la longitud de un username ya normalizado.
func IsValidUsername(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= UsernameMinLen && n <= UsernameMaxLen
}
