package http_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shop-api/internal/application/dto"
	"github.com/jhoicas/shop-api/internal/domain"
	"github.com/jhoicas/shop-api/internal/domain/entity"
	"github.com/jhoicas/shop-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/shop-api/internal/interfaces/http"
)

func TestRoutes_PoliticaPorOperacion(t *testing.T) {
	want := map[string]string{
		"POST /users/login":            "anonymous",
		"POST /users":                  "anonymous",
		"GET /users/me":                "any-authenticated-role",
		"GET /users":                   "role-in {manager}",
		"PUT /users/:id":               "role-in {manager}",
		"DELETE /users/:id":            "role-in {manager}",
		"GET /categories":              "anonymous",
		"GET /categories/:id":          "anonymous",
		"GET /categories/:id/products": "anonymous",
		"POST /categories":             "role-in {employee, manager}",
		"PUT /categories/:id":          "role-in {manager}",
		"DELETE /categories/:id":       "role-in {manager}",
		"GET /products":                "anonymous",
		"GET /products/:id":            "anonymous",
		"POST /products":               "role-in {employee, manager}",
		"PUT /products/:id":            "role-in {manager}",
		"DELETE /products/:id":         "role-in {manager}",
	}

	routes := apphttp.Routes(apphttp.RouterDeps{})
	got := make(map[string]string, len(routes))
	for _, r := range routes {
		key := r.Method + " " + r.Path
		_, dup := got[key]
		require.False(t, dup, "ruta duplicada %s", key)
		got[key] = r.Policy.String()
		assert.NotNil(t, r.Handler, key)
	}
	assert.Equal(t, want, got)
}

func TestProducts_AnonimoSinToken_200(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, body := env.do(t, http.MethodGet, "/v1/products", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	list := decode[dto.ProductListResponse](t, body)
	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items, "lista vacía es 200 con items []")
	assert.Equal(t, 20, list.Page.Limit)
}

func TestProducts_EmployeeEnRutaManager_403(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, body := env.do(t, http.MethodDelete, "/v1/products/cualquiera", env.employeeToken(t), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, body).Code)
}

func TestProducts_SinToken_401(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, body := env.do(t, http.MethodPost, "/v1/products", "", map[string]any{"title": "Mesa"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", decode[dto.ErrorResponse](t, body).Code)
}

func TestAuthorize_TokensInvalidos_401(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	expired, err := env.codec.Encode(env.managerID, entity.RoleManager, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	valid := env.managerToken(t)
	tampered := valid[:len(valid)-2] + "xx"

	for name, header := range map[string]string{
		"expirado":       "Bearer " + expired,
		"malformado":     "Bearer token.invalido.aqui",
		"firma alterada": tampered,
		"sin esquema":    strings.TrimPrefix(valid, "Bearer "),
		"basic":          "Basic YWxpY2U6c2VjcmV0",
		"bearer vacío":   "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, "/v1/users", header, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			resp := decode[dto.ErrorResponse](t, body)
			assert.Equal(t, "UNAUTHENTICATED", resp.Code)
			assert.NotContains(t, strings.ToLower(resp.Message), "expir", "la causa no se expone")
		})
	}
}

func TestAuthorize_ManagerEnRutaManager_200(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, body := env.do(t, http.MethodGet, "/v1/users", env.managerToken(t), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Len(t, decode[dto.UserListResponse](t, body).Items, 2)
}

func TestLogin_Alice_TokenYMe(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, body := env.do(t, http.MethodPost, "/v1/users/login", "",
		dto.LoginRequest{Username: "alice", Password: "secret"})
	require.Equal(t, http.StatusOK, status, string(body))

	out := decode[dto.LoginResponse](t, body)
	assert.Equal(t, "alice", out.User.Username)
	assert.Equal(t, entity.RoleManager, out.User.Role)

	claims, err := env.codec.Decode(out.Token)
	require.NoError(t, err)
	assert.Equal(t, env.managerID, claims.UserID)
	assert.Equal(t, entity.RoleManager, claims.Role)

	status, body = env.do(t, http.MethodGet, "/v1/users/me", "Bearer "+out.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, env.managerID, decode[dto.UserResponse](t, body).ID)
}

func TestLogin_CredencialesInvalidas_401(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	for _, in := range []dto.LoginRequest{
		{Username: "alice", Password: "wrong"},
		{Username: "nadie", Password: "secret"},
	} {
		status, body := env.do(t, http.MethodPost, "/v1/users/login", "", in)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "INVALID_CREDENTIALS", decode[dto.ErrorResponse](t, body).Code)
	}
}

func TestLogin_LegacyNotFound_404(t *testing.T) {
	env := newTestEnv(t, envOptions{legacyNotFound: true})

	status, _ := env.do(t, http.MethodPost, "/v1/users/login", "",
		dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPost, "/v1/users/login", "",
		dto.LoginRequest{Username: "alice", Password: "secret"})
	assert.Equal(t, http.StatusOK, status)
}

func TestLogin_CamposVacios_400(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, body := env.do(t, http.MethodPost, "/v1/users/login", "", dto.LoginRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	resp := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "VALIDATION", resp.Code)
	assert.Contains(t, resp.Message, "password")
}

// failingUsers simula una base de datos caída para las lecturas por username.
type failingUsers struct {
	*memory.UserRepo
}

func (failingUsers) FindByUsername(context.Context, string) (*entity.User, error) {
	return nil, errors.Join(domain.ErrStoreUnavailable, errors.New("connection refused"))
}

func TestLogin_StoreCaido_503(t *testing.T) {
	env := newTestEnv(t, envOptions{users: failingUsers{memory.NewStore().Users()}})

	status, body := env.do(t, http.MethodPost, "/v1/users/login", "",
		dto.LoginRequest{Username: "alice", Password: "secret"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	resp := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "STORE_UNAVAILABLE", resp.Code)
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestSignup_RolEmployeeYDuplicado(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, body := env.do(t, http.MethodPost, "/v1/users", "",
		map[string]string{"username": "carol", "password": "pw1234", "role": "manager"})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, entity.RoleEmployee, decode[dto.UserResponse](t, body).Role, "el alta pública ignora el rol pedido")

	status, body = env.do(t, http.MethodPost, "/v1/users", "",
		dto.CreateUserRequest{Username: "carol", Password: "otra1234"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, body).Code)

	status, body = env.do(t, http.MethodPost, "/v1/users", "",
		dto.CreateUserRequest{Username: "cy", Password: "pw1234"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[dto.ErrorResponse](t, body).Message, "username")
}

func TestUsers_UpdateIDDistinto_404YPromocion(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	path := "/v1/users/" + env.employeeID

	status, _ := env.do(t, http.MethodPut, path, env.managerToken(t),
		map[string]string{"id": env.managerID, "role": "manager"})
	assert.Equal(t, http.StatusNotFound, status, "id del body distinto al de la ruta")

	status, body := env.do(t, http.MethodPut, path, env.managerToken(t),
		map[string]string{"id": env.employeeID, "role": "manager"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, entity.RoleManager, decode[dto.UserResponse](t, body).Role)

	status, _ = env.do(t, http.MethodPut, path, env.managerToken(t), map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodDelete, path, env.managerToken(t), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, path, env.managerToken(t), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCatalogo_FlujoCompleto(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	employee := env.employeeToken(t)
	manager := env.managerToken(t)

	status, body := env.do(t, http.MethodPost, "/v1/categories", employee, dto.CategoryRequest{Title: "Hogar"})
	require.Equal(t, http.StatusCreated, status, string(body))
	category := decode[dto.CategoryResponse](t, body)

	status, _ = env.do(t, http.MethodPost, "/v1/categories", employee, dto.CategoryRequest{Title: "Hogar"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = env.do(t, http.MethodPost, "/v1/products", employee, map[string]any{
		"title": "Lámpara", "description": "de mesa", "price": "19.90", "category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	product := decode[dto.ProductResponse](t, body)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Hogar", product.Category.Title)
	assert.Equal(t, "19.9", product.Price.String())

	status, _ = env.do(t, http.MethodPost, "/v1/products", employee, map[string]any{
		"title": "Silla", "price": "10", "category_id": "00000000-0000-0000-0000-00000000dead",
	})
	assert.Equal(t, http.StatusBadRequest, status, "categoría inexistente")

	status, _ = env.do(t, http.MethodPost, "/v1/products", employee, map[string]any{
		"title": "Silla", "price": "0", "category_id": category.ID,
	})
	assert.Equal(t, http.StatusBadRequest, status, "precio no positivo")

	status, body = env.do(t, http.MethodGet, "/v1/categories/"+category.ID+"/products", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.ProductListResponse](t, body).Items, 1)

	status, _ = env.do(t, http.MethodGet, "/v1/categories/no-existe/products", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/v1/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Lámpara", decode[dto.ProductResponse](t, body).Title)

	status, _ = env.do(t, http.MethodPut, "/v1/products/"+product.ID, employee, map[string]any{"title": "Lámpara LED"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodPut, "/v1/products/"+product.ID, manager, map[string]any{"id": "otro", "title": "Lámpara LED"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodPut, "/v1/products/"+product.ID, manager, map[string]any{"title": "Lámpara LED"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "Lámpara LED", decode[dto.ProductResponse](t, body).Title)

	status, body = env.do(t, http.MethodDelete, "/v1/categories/"+category.ID, manager, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, body).Code)

	status, _ = env.do(t, http.MethodDelete, "/v1/products/"+product.ID, manager, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, "/v1/categories/"+category.ID, manager, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, "/v1/categories/"+category.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRutaInexistente_404(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, body := env.do(t, http.MethodGet, "/v1/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, body).Code)
}

func TestHealthYMetrics(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	status, _ := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	env.do(t, http.MethodGet, "/v1/users", env.employeeToken(t), nil)

	status, body := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "shop_http_requests_total")
	assert.Contains(t, string(body), `shop_access_decisions_total{outcome="forbidden"}`)
}

func TestMetrics_TrasVariosMetodos_200(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	manager := env.managerToken(t)
	path := "/v1/products/00000000-0000-0000-0000-000000000001"

	for i := 0; i < 5; i++ {
		env.do(t, http.MethodDelete, path, manager, nil)
		env.do(t, http.MethodPut, path, manager, map[string]any{"title": "Lámpara"})
		env.do(t, http.MethodGet, path, "", nil)
		env.do(t, http.MethodPost, "/v1/users/login", "", dto.LoginRequest{Username: "alice", Password: "secret"})
	}

	status, body := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `method="DELETE"`)
	assert.Contains(t, string(body), `method="PUT"`)
	assert.Contains(t, string(body), `method="GET"`)
}

func TestIDNoUUID_404(t *testing.T) {
	env := newTestEnv(t, envOptions{uuidColumns: true})
	manager := env.managerToken(t)

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/v1/products/abc", nil},
		{http.MethodPut, "/v1/products/abc", map[string]any{"title": "Lámpara"}},
		{http.MethodDelete, "/v1/products/abc", nil},
		{http.MethodGet, "/v1/categories/abc", nil},
		{http.MethodGet, "/v1/categories/abc/products", nil},
		{http.MethodPut, "/v1/categories/abc", dto.CategoryRequest{Title: "Hogar"}},
		{http.MethodDelete, "/v1/categories/abc", nil},
		{http.MethodPut, "/v1/users/me", map[string]any{"role": entity.RoleManager}},
		{http.MethodDelete, "/v1/users/me", nil},
	}
	for _, tc := range cases {
		status, body := env.do(t, tc.method, tc.path, manager, tc.body)
		assert.Equal(t, http.StatusNotFound, status, "%s %s: %s", tc.method, tc.path, body)
		assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, body).Code, "%s %s", tc.method, tc.path)
	}
}

func TestIDEnMayusculas_SeNormaliza(t *testing.T) {
	env := newTestEnv(t, envOptions{uuidColumns: true})

	status, body := env.do(t, http.MethodPost, "/v1/categories", env.employeeToken(t), dto.CategoryRequest{Title: "Hogar"})
	require.Equal(t, http.StatusCreated, status, string(body))
	category := decode[dto.CategoryResponse](t, body)

	status, body = env.do(t, http.MethodGet, "/v1/categories/"+strings.ToUpper(category.ID), "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, category.ID, decode[dto.CategoryResponse](t, body).ID)
}

func TestProducto_ValidacionDePrecioYTitulo_400(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	employee := env.employeeToken(t)
	manager := env.managerToken(t)

	status, body := env.do(t, http.MethodPost, "/v1/categories", employee, dto.CategoryRequest{Title: "Hogar"})
	require.Equal(t, http.StatusCreated, status, string(body))
	category := decode[dto.CategoryResponse](t, body)

	for _, price := range []string{"0.001", "10.125", "12345678901"} {
		status, body := env.do(t, http.MethodPost, "/v1/products", employee, map[string]any{
			"title": "Lámpara", "price": price, "category_id": category.ID,
		})
		assert.Equal(t, http.StatusBadRequest, status, "precio %s: %s", price, body)
	}

	status, body = env.do(t, http.MethodPost, "/v1/products", employee, map[string]any{
		"title": "     ", "price": "10", "category_id": category.ID,
	})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, _ = env.do(t, http.MethodPost, "/v1/categories", employee, dto.CategoryRequest{Title: "    "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, "/v1/products", employee, map[string]any{
		"title": "Lámpara", "price": "9999999999.99", "category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	product := decode[dto.ProductResponse](t, body)
	assert.Equal(t, "9999999999.99", product.Price.String())

	status, _ = env.do(t, http.MethodPut, "/v1/products/"+product.ID, manager, map[string]any{"title": "    "})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodPut, "/v1/products/"+product.ID, manager, map[string]any{"price": "1.005"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/v1/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Lámpara", decode[dto.ProductResponse](t, body).Title)
}
