package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/shop-api/internal/application/auth"
	"github.com/jhoicas/shop-api/internal/application/usecase"
	"github.com/jhoicas/shop-api/internal/domain/repository"
	"github.com/jhoicas/shop-api/internal/infrastructure/memory"
	"github.com/jhoicas/shop-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/shop-api/internal/interfaces/http"
	"github.com/jhoicas/shop-api/pkg/config"
	"github.com/jhoicas/shop-api/pkg/jwt"
	"github.com/jhoicas/shop-api/pkg/logger"
)

// repositories agrupa los puertos de persistencia según DB_DRIVER.
type repositories struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
	close      func()
}

func openRepositories(ctx context.Context, cfg config.DBConfig) (*repositories, error) {
	if cfg.Driver == config.DriverMemory {
		store := memory.NewStore()
		return &repositories{
			users:      store.Users(),
			categories: store.Categories(),
			products:   store.Products(),
			close:      func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:      postgres.NewUserRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		products:   postgres.NewProductRepository(pool),
		close:      pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := openRepositories(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer repos.close()
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
	}

	codec, err := jwt.NewCodec(jwt.Config{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL(),
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configuración JWT")
	}

	zl := log.Zerolog()
	authUC := auth.NewAuthUseCase(repos.users, codec, zl).WithObserver(httpRouter.ObserveLogin)
	userUC := usecase.NewUserUseCase(repos.users)
	categoryUC := usecase.NewCategoryUseCase(repos.categories)
	productUC := usecase.NewProductUseCase(repos.products, repos.categories)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.NewErrorHandler(zl),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(zl))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.AllowOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderRequestID,
		ExposeHeaders: httpRouter.HeaderRequestID,
	}))
	app.Use(compress.New())

	// Swagger UI solo en desarrollo: http://localhost:<port>/docs
	if cfg.App.IsDevelopment() {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Shop API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:              authUC,
		UserUC:              userUC,
		CategoryUC:          categoryUC,
		ProductUC:           productUC,
		Guard:               auth.NewGuard(codec),
		Log:                 zl,
		LegacyLoginNotFound: cfg.Auth.LegacyLoginNotFound,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
