package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/Apurer/go-gin-shop-server/internal/domains/carts/adapters/http/mapper"
	cartports "github.com/Apurer/go-gin-shop-server/internal/domains/carts/ports"
)

// CartAPI wires HTTP transport with the cart engine.
type CartAPI struct {
	service cartports.Service
}

// NewCartAPI creates a CartAPI backed by the provided service.
func NewCartAPI(service cartports.Service) CartAPI {
	return CartAPI{service: service}
}

// Get /v1/cart
// Returns the caller's active cart
func (api *CartAPI) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cart, err := api.service.GetActiveCart(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Post /v1/cart/items
// Reserves stock and adds it to the caller's cart
func (api *CartAPI) AddItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var payload cartmapper.AddItemInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := api.service.AddItem(c.Request.Context(), userID, payload.ProductID, payload.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cartmapper.FromDomainItem(item))
}

// Put /v1/cart/items/:itemId
// Sets the quantity of a cart line
func (api *CartAPI) UpdateItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var payload cartmapper.UpdateItemInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := api.service.UpdateItemQuantity(c.Request.Context(), userID, itemID, payload.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainItem(item))
}

// Delete /v1/cart/items/:itemId
// Removes a cart line and releases its stock
func (api *CartAPI) RemoveItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	removed, err := api.service.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !removed {
		respondServiceError(c, cartports.ErrItemNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete /v1/cart
// Empties the caller's cart
func (api *CartAPI) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if _, err := api.service.ClearCart(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
