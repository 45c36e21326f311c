// Package access modela el nivel de acceso de cada operación de la API.
//
// Una Policy se fija al registrar la ruta y no cambia en runtime: cada
// operación tiene exactamente un nivel (anónimo, cualquier rol autenticado o
// un conjunto de roles).
package access

import (
	"sort"
	"strings"
)

// Level tipo de política.
type Level int

const (
	// Anonymous no exige token.
	Anonymous Level = iota
	// Authenticated exige un token válido con cualquier rol.
	Authenticated
	// RoleRestricted exige un token válido cuyo rol esté en el conjunto.
	RoleRestricted
)

func (l Level) String() string {
	switch l {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "any-authenticated-role"
	case RoleRestricted:
		return "role-in"
	default:
		return "unknown"
	}
}

// Policy es un valor inmutable; el conjunto de roles no se expone.
type Policy struct {
	level Level
	roles map[string]struct{}
}

// Public política para operaciones sin token.
func Public() Policy {
	return Policy{level: Anonymous}
}

// AnyRole política para cualquier usuario autenticado.
func AnyRole() Policy {
	return Policy{level: Authenticated}
}

// RoleIn política restringida a roles. Sin roles no admite a nadie.
func RoleIn(roles ...string) Policy {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return Policy{level: RoleRestricted, roles: set}
}

// Level devuelve el nivel de la política.
func (p Policy) Level() Level {
	return p.level
}

// RequiresToken indica si la operación exige un token.
func (p Policy) RequiresToken() bool {
	return p.level != Anonymous
}

// Permits indica si un rol ya autenticado puede ejecutar la operación.
func (p Policy) Permits(role string) bool {
	switch p.level {
	case Anonymous, Authenticated:
		return true
	case RoleRestricted:
		_, ok := p.roles[role]
		return ok
	default:
		return false
	}
}

// Roles devuelve los roles permitidos ordenados (vacío salvo en RoleRestricted).
func (p Policy) Roles() []string {
	out := make([]string, 0, len(p.roles))
	for r := range p.roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (p Policy) String() string {
	if p.level == RoleRestricted {
		return p.level.String() + " {" + strings.Join(p.Roles(), ", ") + "}"
	}
	return p.level.String()
}
