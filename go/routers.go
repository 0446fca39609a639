package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	// Routes for the CatalogAPI part of the API
	CatalogAPI CatalogAPI
	// Routes for the CartAPI part of the API
	CartAPI CartAPI
	// Routes for the OrderAPI part of the API
	OrderAPI OrderAPI
	// Routes for the WalletAPI part of the API
	WalletAPI WalletAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"ListProducts", http.MethodGet, "/v1/products", handleFunctions.CatalogAPI.ListProducts},
		{"GetProduct", http.MethodGet, "/v1/products/:productId", handleFunctions.CatalogAPI.GetProduct},
		{"CreateProduct", http.MethodPost, "/v1/products", handleFunctions.CatalogAPI.CreateProduct},
		{"UpdateProduct", http.MethodPut, "/v1/products/:productId", handleFunctions.CatalogAPI.UpdateProduct},
		{"SetProductAvailability", http.MethodPut, "/v1/products/:productId/availability", handleFunctions.CatalogAPI.SetAvailability},
		{"RestockProduct", http.MethodPost, "/v1/products/:productId/restock", handleFunctions.CatalogAPI.Restock},

		{"GetCart", http.MethodGet, "/v1/cart", handleFunctions.CartAPI.GetCart},
		{"ClearCart", http.MethodDelete, "/v1/cart", handleFunctions.CartAPI.ClearCart},
		{"AddCartItem", http.MethodPost, "/v1/cart/items", handleFunctions.CartAPI.AddItem},
		{"UpdateCartItem", http.MethodPut, "/v1/cart/items/:itemId", handleFunctions.CartAPI.UpdateItem},
		{"RemoveCartItem", http.MethodDelete, "/v1/cart/items/:itemId", handleFunctions.CartAPI.RemoveItem},

		{"Checkout", http.MethodPost, "/v1/checkout", handleFunctions.OrderAPI.Checkout},
		{"ListOrders", http.MethodGet, "/v1/orders", handleFunctions.OrderAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/v1/orders/:orderId", handleFunctions.OrderAPI.GetOrder},
		{"CancelOrder", http.MethodPost, "/v1/orders/:orderId/cancel", handleFunctions.OrderAPI.CancelOrder},
		{"ListOrderStatuses", http.MethodGet, "/v1/order-statuses", handleFunctions.OrderAPI.ListStatuses},
		{"ListAllOrders", http.MethodGet, "/v1/admin/orders", handleFunctions.OrderAPI.ListAllOrders},
		{"UpdateOrderStatus", http.MethodPut, "/v1/admin/orders/:orderId/status", handleFunctions.OrderAPI.UpdateStatus},

		{"GetWallet", http.MethodGet, "/v1/wallet", handleFunctions.WalletAPI.GetWallet},
		{"Deposit", http.MethodPost, "/v1/wallet/deposits", handleFunctions.WalletAPI.Deposit},
		{"ListTransactions", http.MethodGet, "/v1/wallet/transactions", handleFunctions.WalletAPI.ListTransactions},
	}
}
