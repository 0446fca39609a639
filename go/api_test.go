package shopserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	cartapp "github.com/Apurer/go-gin-shop-server/internal/domains/carts/application"
	catalogapp "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/application"
	orderapp "github.com/Apurer/go-gin-shop-server/internal/domains/orders/application"
	walletapp "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/application"
	uowmemory "github.com/Apurer/go-gin-shop-server/internal/platform/unitofwork/memory"
	"github.com/Apurer/go-gin-shop-server/internal/shared/authz"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := uowmemory.NewStore()
	_, err := catalogapp.Seed(context.Background(), store, catalogapp.DemoProducts())
	require.NoError(t, err)
	admins := authz.StaticAdmins([]string{"admin"})
	wallets := walletapp.NewService(store)
	orders := orderapp.NewService(store, wallets.Postings(), orderapp.WithRoleChecker(admins))
	return NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		CatalogAPI: NewCatalogAPI(catalogapp.NewService(store, catalogapp.WithRoleChecker(admins))),
		CartAPI:    NewCartAPI(cartapp.NewService(store)),
		OrderAPI:   NewOrderAPI(orders, nil),
		WalletAPI:  NewWalletAPI(wallets),
	})
}

type call struct {
	method, path, user, key string
	body                    any
}

func do(t *testing.T, router *gin.Engine, c call) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set(HeaderUserID, c.user)
	}
	if c.key != "" {
		req.Header.Set(HeaderIdempotencyKey, c.key)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	decoded := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestShopFlow_CheckoutReplayAndCancel(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := do(t, router, call{method: http.MethodPost, path: "/v1/wallet/deposits", user: "alice", body: map[string]any{"amount": "100.00"}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, item := do(t, router, call{method: http.MethodPost, path: "/v1/cart/items", user: "alice", body: map[string]any{"productId": 1, "quantity": 2}})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "60.00", item["lineTotal"])

	rec, product := do(t, router, call{method: http.MethodGet, path: "/v1/products/1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, product["stock"])

	rec, checkout := do(t, router, call{method: http.MethodPost, path: "/v1/checkout", user: "alice", key: "abc", body: map[string]any{"delivery": "pick-up"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "40.00", checkout["balance"])
	require.Equal(t, false, checkout["replayed"])
	order := checkout["order"].(map[string]any)
	require.Equal(t, "60.00", order["totalAmount"])
	require.Equal(t, "Processing", order["status"].(map[string]any)["name"])

	rec, replay := do(t, router, call{method: http.MethodPost, path: "/v1/checkout", user: "alice", key: "abc", body: map[string]any{"delivery": "pick-up"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, replay["replayed"])

	rec, _ = do(t, router, call{method: http.MethodGet, path: "/v1/cart", user: "alice"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	orderPath := "/v1/orders/" + jsonNumber(order["id"])
	rec, cancelled := do(t, router, call{method: http.MethodPost, path: orderPath + "/cancel", user: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Cancelled", cancelled["status"].(map[string]any)["name"])

	rec, again := do(t, router, call{method: http.MethodPost, path: orderPath + "/cancel", user: "alice"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "/problems/conflict", again["type"])

	rec, wallet := do(t, router, call{method: http.MethodGet, path: "/v1/wallet", user: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "100.00", wallet["balance"])

	rec, product = do(t, router, call{method: http.MethodGet, path: "/v1/products/1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 5, product["stock"])
}

func TestAddItem_InsufficientStockProblem(t *testing.T) {
	router := newTestRouter(t)

	rec, problem := do(t, router, call{method: http.MethodPost, path: "/v1/cart/items", user: "alice", body: map[string]any{"productId": 1, "quantity": 6}})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	require.Equal(t, "/problems/out-of-stock", problem["type"])
	extensions := problem["extensions"].(map[string]any)
	require.EqualValues(t, 1, extensions["productId"])
	require.EqualValues(t, 5, extensions["available"])
}

func TestCheckout_InsufficientFundsProblem(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, call{method: http.MethodPost, path: "/v1/wallet/deposits", user: "alice", body: map[string]any{"amount": "50"}})
	do(t, router, call{method: http.MethodPost, path: "/v1/cart/items", user: "alice", body: map[string]any{"productId": 1, "quantity": 2}})

	rec, problem := do(t, router, call{method: http.MethodPost, path: "/v1/checkout", user: "alice", body: map[string]any{"delivery": "deliver"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "/problems/insufficient-funds", problem["type"])

	rec, cart := do(t, router, call{method: http.MethodGet, path: "/v1/cart", user: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "60.00", cart["totalPrice"])
}

func TestRequestValidation(t *testing.T) {
	router := newTestRouter(t)

	rec, problem := do(t, router, call{method: http.MethodGet, path: "/v1/cart"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "/problems/unauthorized", problem["type"])

	rec, _ = do(t, router, call{method: http.MethodPost, path: "/v1/checkout", user: "alice", body: map[string]any{"delivery": "drone"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, call{method: http.MethodPost, path: "/v1/checkout", user: "alice", body: map[string]any{"delivery": "pick-up"}})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, problem = do(t, router, call{method: http.MethodPost, path: "/v1/wallet/deposits", user: "alice", body: map[string]any{"amount": "-5"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "/problems/validation-error", problem["type"])

	rec, _ = do(t, router, call{method: http.MethodGet, path: "/v1/orders/abc", user: "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, call{method: http.MethodGet, path: "/v1/orders/42", user: "alice"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := do(t, router, call{method: http.MethodGet, path: "/v1/admin/orders", user: "alice"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, router, call{method: http.MethodGet, path: "/v1/admin/orders", user: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, call{method: http.MethodPut, path: "/v1/products/2/availability", user: "alice", body: map[string]any{"available": false}})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, product := do(t, router, call{method: http.MethodPut, path: "/v1/products/2/availability", user: "admin", body: map[string]any{"available": false}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, product["available"])

	rec, problem := do(t, router, call{method: http.MethodPost, path: "/v1/cart/items", user: "alice", body: map[string]any{"productId": 2, "quantity": 1}})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "/problems/product-unavailable", problem["type"])
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
