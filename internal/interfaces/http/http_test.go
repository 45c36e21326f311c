package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shop-api/internal/application/auth"
	"github.com/jhoicas/shop-api/internal/application/usecase"
	"github.com/jhoicas/shop-api/internal/domain"
	"github.com/jhoicas/shop-api/internal/domain/entity"
	"github.com/jhoicas/shop-api/internal/domain/repository"
	"github.com/jhoicas/shop-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/shop-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/shop-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "shop-api-test"
)

// testEnv app Fiber completa sobre el store en memoria, con un manager (alice) y un employee (bob).
type testEnv struct {
	app        *fiber.App
	codec      *pkgjwt.Codec
	store      *memory.Store
	managerID  string
	employeeID string
}

type envOptions struct {
	legacyNotFound bool
	users          repository.UserRepository
	// uuidColumns hace que los repositorios rechacen ids no UUID como lo hace
	// PostgreSQL (error de store, no "no encontrado").
	uuidColumns bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	codec, err := pkgjwt.NewCodec(pkgjwt.Config{Secret: testJWTSecret, TTL: time.Hour, Issuer: testIssuer})
	require.NoError(t, err)

	store := memory.NewStore()
	users := opts.users
	if users == nil {
		users = store.Users()
	}
	var (
		userRepo     repository.UserRepository     = store.Users()
		categoryRepo repository.CategoryRepository = store.Categories()
		productRepo  repository.ProductRepository  = store.Products()
	)
	if opts.uuidColumns {
		userRepo = uuidUsers{store.Users()}
		categoryRepo = uuidCategories{store.Categories()}
		productRepo = uuidProducts{store.Products()}
	}
	userUC := usecase.NewUserUseCase(userRepo)
	alice, err := userUC.CreateWithRole(context.Background(), "alice", "secret", entity.RoleManager)
	require.NoError(t, err)
	bob, err := userUC.CreateWithRole(context.Background(), "bob", "hunter2", entity.RoleEmployee)
	require.NoError(t, err)

	log := zerolog.Nop()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.NewErrorHandler(log)})
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:              auth.NewAuthUseCase(users, codec, log).WithObserver(apphttp.ObserveLogin),
		UserUC:              userUC,
		CategoryUC:          usecase.NewCategoryUseCase(categoryRepo),
		ProductUC:           usecase.NewProductUseCase(productRepo, categoryRepo),
		Guard:               auth.NewGuard(codec),
		Log:                 log,
		LegacyLoginNotFound: opts.legacyNotFound,
	})

	return &testEnv{app: app, codec: codec, store: store, managerID: alice.ID, employeeID: bob.ID}
}

func (e *testEnv) bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := e.codec.Encode(userID, role, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) managerToken(t *testing.T) string {
	return e.bearer(t, e.managerID, entity.RoleManager)
}

func (e *testEnv) employeeToken(t *testing.T) string {
	return e.bearer(t, e.employeeID, entity.RoleEmployee)
}

// do lanza la petición y devuelve status y body crudo.
func (e *testEnv) do(t *testing.T, method, path, authHeader string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func checkUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("query: %w: invalid input syntax for type uuid", domain.ErrStoreUnavailable)
	}
	return nil
}

type uuidUsers struct{ *memory.UserRepo }

func (r uuidUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	return r.UserRepo.GetByID(ctx, id)
}

func (r uuidUsers) Delete(ctx context.Context, id string) error {
	if err := checkUUID(id); err != nil {
		return err
	}
	return r.UserRepo.Delete(ctx, id)
}

type uuidCategories struct{ *memory.CategoryRepo }

func (r uuidCategories) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	return r.CategoryRepo.GetByID(ctx, id)
}

func (r uuidCategories) Delete(ctx context.Context, id string) error {
	if err := checkUUID(id); err != nil {
		return err
	}
	return r.CategoryRepo.Delete(ctx, id)
}

type uuidProducts struct{ *memory.ProductRepo }

func (r uuidProducts) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	return r.ProductRepo.GetByID(ctx, id)
}

func (r uuidProducts) ListByCategory(ctx context.Context, categoryID string, limit, offset int) ([]*entity.Product, error) {
	if err := checkUUID(categoryID); err != nil {
		return nil, err
	}
	return r.ProductRepo.ListByCategory(ctx, categoryID, limit, offset)
}

func (r uuidProducts) Delete(ctx context.Context, id string) error {
	if err := checkUUID(id); err != nil {
		return err
	}
	return r.ProductRepo.Delete(ctx, id)
}
