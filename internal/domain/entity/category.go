package entity

import "time"

// Category agrupa productos del catálogo.
type Category struct {
	ID        string
	Title     string // único
	CreatedAt time.Time
	UpdatedAt time.Time
}
