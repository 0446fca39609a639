package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/go-gin-shop-server/internal/domains/catalog/ports"
)

// CatalogAPI wires HTTP transport with the catalogue service.
type CatalogAPI struct {
	service catalogports.Service
}

// NewCatalogAPI creates a CatalogAPI backed by the provided service.
func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

// Get /v1/products
// Lists the catalogue
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProducts(products))
}

// Get /v1/products/:productId
// Finds a product by id
func (api *CatalogAPI) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(product))
}

// Post /v1/products
// Adds a product to the catalogue
func (api *CatalogAPI) CreateProduct(c *gin.Context) {
	api.saveProduct(c, 0, http.StatusCreated)
}

// Put /v1/products/:productId
// Replaces the catalogue data of a product; stock is left as is
func (api *CatalogAPI) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	api.saveProduct(c, id, http.StatusOK)
}

func (api *CatalogAPI) saveProduct(c *gin.Context, id int64, status int) {
	actorID, ok := requireUser(c)
	if !ok {
		return
	}
	var payload catalogmapper.ProductInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	saved, err := api.service.SaveProduct(c.Request.Context(), actorID, catalogmapper.ToDomainProduct(id, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(status, catalogmapper.FromDomainProduct(saved))
}

// Put /v1/products/:productId/availability
// Withdraws or relists a product
func (api *CatalogAPI) SetAvailability(c *gin.Context) {
	actorID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload catalogmapper.AvailabilityInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := api.service.SetAvailability(c.Request.Context(), actorID, id, *payload.Available)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(product))
}

// Post /v1/products/:productId/restock
// Adds stock to a product
func (api *CatalogAPI) Restock(c *gin.Context) {
	actorID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload catalogmapper.RestockInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := api.service.Restock(c.Request.Context(), actorID, id, payload.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(product))
}
