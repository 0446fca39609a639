package shopserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/go-gin-shop-server/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/Apurer/go-gin-shop-server/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-shop-server/internal/domains/orders/ports"
)

// OrderAPI wires HTTP transport with checkout and the order lifecycle.
type OrderAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI. workflows may be nil to check out inline.
func NewOrderAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /v1/checkout
// Converts the caller's cart into an order and pays for it
func (api *OrderAPI) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}
	var payload ordermapper.CheckoutInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	delivery, err := orderdomain.ParseDeliveryOption(payload.Delivery)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.checkout(c.Request.Context(), orderports.CheckoutInput{
		UserID:         userID,
		Delivery:       delivery,
		IdempotencyKey: key,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, ordermapper.FromCheckoutResult(result))
}

func (api *OrderAPI) checkout(ctx context.Context, input orderports.CheckoutInput) (*orderports.CheckoutResult, error) {
	if api.workflows != nil {
		return api.workflows.Checkout(ctx, input)
	}
	return api.service.Checkout(ctx, input)
}

// Get /v1/orders
// Lists the caller's orders
func (api *OrderAPI) ListOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orders, err := api.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrders(orders))
}

// Get /v1/orders/:orderId
// Finds one of the caller's orders
func (api *OrderAPI) GetOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetDetails(c.Request.Context(), userID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Post /v1/orders/:orderId/cancel
// Cancels a live order, refunds it and restocks its lines
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.Cancel(c.Request.Context(), userID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Get /v1/order-statuses
// Lists the order status reference data
func (api *OrderAPI) ListStatuses(c *gin.Context) {
	statuses, err := api.service.ListStatuses(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromStatuses(statuses))
}

// Get /v1/admin/orders
// Lists every order
func (api *OrderAPI) ListAllOrders(c *gin.Context) {
	actorID, ok := requireUser(c)
	if !ok {
		return
	}
	orders, err := api.service.ListAll(c.Request.Context(), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrders(orders))
}

// Put /v1/admin/orders/:orderId/status
// Moves an order to another status
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	actorID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload ordermapper.StatusInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), actorID, orderID, orderdomain.StatusID(payload.StatusID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}
