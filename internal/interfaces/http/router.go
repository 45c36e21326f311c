package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/shop-api/internal/application/auth"
	"github.com/jhoicas/shop-api/internal/application/usecase"
	"github.com/jhoicas/shop-api/internal/domain/access"
	"github.com/jhoicas/shop-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	CategoryUC *usecase.CategoryUseCase
	ProductUC  *usecase.ProductUseCase
	Guard      *auth.Guard
	Log        zerolog.Logger
	// LegacyLoginNotFound: login fallido responde 404 en vez de 401.
	LegacyLoginNotFound bool
}

// Route una operación de la API con su política de acceso.
type Route struct {
	Method  string
	Path    string
	Policy  access.Policy
	Handler fiber.Handler
}

// Routes tabla estática de operaciones bajo /v1. Toda ruta declara su política;
// no hay ruta sin guard.
func Routes(deps RouterDeps) []Route {
	authHandler := NewAuthHandler(deps.AuthUC, deps.LegacyLoginNotFound)
	userHandler := NewUserHandler(deps.UserUC)
	categoryHandler := NewCategoryHandler(deps.CategoryUC, deps.ProductUC)
	productHandler := NewProductHandler(deps.ProductUC)

	public := access.Public()
	anyRole := access.AnyRole()
	manager := access.RoleIn(entity.RoleManager)
	staff := access.RoleIn(entity.RoleEmployee, entity.RoleManager)

	return []Route{
		// Users
		{fiber.MethodPost, "/users/login", public, authHandler.Login},
		{fiber.MethodPost, "/users", public, userHandler.Register},
		{fiber.MethodGet, "/users/me", anyRole, userHandler.Me},
		{fiber.MethodGet, "/users", manager, userHandler.List},
		{fiber.MethodPut, "/users/:id", manager, userHandler.Update},
		{fiber.MethodDelete, "/users/:id", manager, userHandler.Delete},

		// Categories
		{fiber.MethodGet, "/categories", public, categoryHandler.List},
		{fiber.MethodGet, "/categories/:id", public, categoryHandler.GetByID},
		{fiber.MethodGet, "/categories/:id/products", public, categoryHandler.Products},
		{fiber.MethodPost, "/categories", staff, categoryHandler.Create},
		{fiber.MethodPut, "/categories/:id", manager, categoryHandler.Update},
		{fiber.MethodDelete, "/categories/:id", manager, categoryHandler.Delete},

		// Products
		{fiber.MethodGet, "/products", public, productHandler.List},
		{fiber.MethodGet, "/products/:id", public, productHandler.GetByID},
		{fiber.MethodPost, "/products", staff, productHandler.Create},
		{fiber.MethodPut, "/products/:id", manager, productHandler.Update},
		{fiber.MethodDelete, "/products/:id", manager, productHandler.Delete},
	}
}

// Router registra health, métricas y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", MetricsHandler())

	v1 := app.Group("/v1")
	for _, r := range Routes(deps) {
		v1.Add(r.Method, r.Path, Authorize(deps.Guard, r.Policy, deps.Log), r.Handler)
	}
}
