package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Longitud de títulos de producto y categoría, tras recortar espacios.
const (
	TitleMinLen = 3
	TitleMaxLen = 60
)

// PriceScale decimales admitidos; coincide con NUMERIC(12, 2).
const PriceScale = 2

// PriceMax cota exclusiva del precio (10 dígitos enteros).
var PriceMax = decimal.New(1, 10)

// Product representa un artículo a la venta. Category se carga en lecturas (join).
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	Category    *Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeTitle recorta espacios; el resultado es lo que se persiste.
func NormalizeTitle(s string) string {
	return strings.TrimSpace(s)
}

// IsValidTitle valida la longitud de un título ya normalizado.
func IsValidTitle(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= TitleMinLen && n <= TitleMaxLen
}

// IsValidPrice exige 0 < p < PriceMax y como mucho dos decimales significativos,
// de modo que el valor se almacena sin redondeo.
func IsValidPrice(p decimal.Decimal) bool {
	if !p.GreaterThan(decimal.Zero) || !p.LessThan(PriceMax) {
		return false
	}
	return p.Equal(p.Truncate(PriceScale))
}
