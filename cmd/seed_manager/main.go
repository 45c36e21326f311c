// seed_manager crea una cuenta con rol manager. El alta pública solo crea employees,
// así que el primer manager se siembra con este comando.
//
// Uso: go run ./cmd/seed_manager -username alice -password <secreto>
// Sin -password se lee SEED_MANAGER_PASSWORD. Usa la misma configuración de BD que la API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/shop-api/internal/application/dto"
	"github.com/jhoicas/shop-api/internal/application/usecase"
	"github.com/jhoicas/shop-api/internal/domain"
	"github.com/jhoicas/shop-api/internal/domain/entity"
	"github.com/jhoicas/shop-api/internal/domain/repository"
	"github.com/jhoicas/shop-api/internal/infrastructure/postgres"
	"github.com/jhoicas/shop-api/pkg/config"
	"github.com/jhoicas/shop-api/pkg/logger"
)

func main() {
	username := flag.String("username", "", "username del manager (3-20 caracteres)")
	password := flag.String("password", os.Getenv("SEED_MANAGER_PASSWORD"), "password del manager")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	// os.Exit no ejecuta defers: el pool y el contexto se liberan dentro de run.
	if err := run(cfg, log, *username, *password); err != nil {
		log.Error().Err(err).Str("username", *username).Msg("seed_manager")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger, username, password string) error {
	if cfg.DB.Driver != config.DriverPostgres {
		return fmt.Errorf("seed_manager requiere DB_DRIVER=postgres (actual: %s)", cfg.DB.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	out, err := seed(ctx, postgres.NewUserRepository(pool), username, password)
	if err != nil {
		return err
	}
	log.Info().Str("id", out.ID).Str("username", out.Username).Msg("manager creado")
	return nil
}

// seed crea el manager sobre el repositorio dado.
func seed(ctx context.Context, repo repository.UserRepository, username, password string) (*dto.UserResponse, error) {
	out, err := usecase.NewUserUseCase(repo).CreateWithRole(ctx, username, password, entity.RoleManager)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		return nil, fmt.Errorf("el username ya existe: %w", err)
	case errors.Is(err, domain.ErrInvalidInput):
		return nil, fmt.Errorf("username o password inválidos: %w", err)
	case err != nil:
		return nil, fmt.Errorf("crear manager: %w", err)
	}
	return out, nil
}
