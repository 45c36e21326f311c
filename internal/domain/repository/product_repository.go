package repository

import (
	"context"

	"github.com/jhoicas/shop-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las lecturas devuelven el producto con su Category cargada.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListByCategory(ctx context.Context, categoryID string, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
