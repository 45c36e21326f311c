// Package memory implementa los repositorios en memoria. Sirve para tests y
// para levantar la API sin PostgreSQL (DB_DRIVER=memory); los datos se pierden
// al reiniciar.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/shop-api/internal/domain"
	"github.com/jhoicas/shop-api/internal/domain/entity"
	"github.com/jhoicas/shop-api/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
)

// Store agrupa las tablas en memoria bajo un único lock, de forma que las
// restricciones entre tablas (FK producto → categoría) se evalúan de forma atómica.
type Store struct {
	mu         sync.RWMutex
	users      map[string]entity.User
	categories map[string]entity.Category
	products   map[string]entity.Product
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]entity.User),
		categories: make(map[string]entity.Category),
		products:   make(map[string]entity.Product),
	}
}

// Users devuelve el repositorio de usuarios sobre este almacén.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Categories devuelve el repositorio de categorías sobre este almacén.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Products devuelve el repositorio de productos sobre este almacén.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// page ordena por creación descendente y, a igual instante, por ID descendente
// (igual que el adaptador PostgreSQL), y recorta.
func page[T any](items []T, key func(T) (time.Time, string), limit, offset int) []T {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return domain.ErrDuplicate
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Username == user.Username {
			return domain.ErrDuplicate
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	items := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		items = append(items, u)
	}
	r.s.mu.RUnlock()

	items = page(items, func(u entity.User) (time.Time, string) { return u.CreatedAt, u.ID }, limit, offset)
	out := make([]*entity.User, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Title == category.Title {
			return domain.ErrDuplicate
		}
	}
	r.s.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepo) Update(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[category.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, c := range r.s.categories {
		if id != category.ID && c.Title == category.Title {
			return domain.ErrDuplicate
		}
	}
	r.s.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	r.s.mu.RLock()
	items := make([]entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		items = append(items, c)
	}
	r.s.mu.RUnlock()

	items = page(items, func(c entity.Category) (time.Time, string) { return c.CreatedAt, c.ID }, limit, offset)
	out := make([]*entity.Category, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return out, nil
}

// Delete falla con ErrConflict si algún producto referencia la categoría.
func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.categories, id)
	return nil
}

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct{ s *Store }

// withCategory copia el producto y adjunta su categoría. Requiere el lock tomado.
func (r *ProductRepo) withCategory(p entity.Product) *entity.Product {
	if c, ok := r.s.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return &p
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return domain.ErrInvalidInput
	}
	p := *product
	p.Category = nil
	r.s.products[p.ID] = p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return r.withCategory(p), nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return domain.ErrInvalidInput
	}
	p := *product
	p.Category = nil
	r.s.products[p.ID] = p
	return nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	return r.list(func(entity.Product) bool { return true }, limit, offset), nil
}

func (r *ProductRepo) ListByCategory(_ context.Context, categoryID string, limit, offset int) ([]*entity.Product, error) {
	return r.list(func(p entity.Product) bool { return p.CategoryID == categoryID }, limit, offset), nil
}

func (r *ProductRepo) list(keep func(entity.Product) bool, limit, offset int) []*entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if keep(p) {
			items = append(items, p)
		}
	}
	items = page(items, func(p entity.Product) (time.Time, string) { return p.CreatedAt, p.ID }, limit, offset)
	out := make([]*entity.Product, 0, len(items))
	for _, p := range items {
		out = append(out, r.withCategory(p))
	}
	return out
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}
