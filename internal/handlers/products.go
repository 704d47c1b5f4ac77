package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stylefeed/catalog-service/internal/types"
)

// ListBrandsResponse represents the brand catalog
type ListBrandsResponse struct {
	Brands []types.Brand `json:"brands" jsonschema:"required"`
}

// ListBrands returns every brand
func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.store.ListBrands(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list brands"})
		return
	}
	// API credentials never leave the service.
	for i := range brands {
		brands[i].APIKey = nil
	}
	c.JSON(http.StatusOK, ListBrandsResponse{Brands: brands})
}

// CreateBrandRequest represents a new brand registration
type CreateBrandRequest struct {
	Name        string  `json:"name" binding:"required" jsonschema:"required"`
	Website     string  `json:"website" binding:"required" jsonschema:"required"`
	APIKey      *string `json:"apiKey"`
	APIEndpoint *string `json:"apiEndpoint"`
	APIType     *string `json:"apiType" jsonschema:"enum=shopify,enum=woocommerce,enum=generic"`
}

// CreateBrand registers a brand
func (h *Handler) CreateBrand(c *gin.Context) {
	var req CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brand, err := h.store.CreateBrand(c.Request.Context(), types.Brand{
		Name:        req.Name,
		Website:     req.Website,
		APIKey:      req.APIKey,
		APIEndpoint: req.APIEndpoint,
		APIType:     req.APIType,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create brand"})
		return
	}
	c.JSON(http.StatusCreated, brand)
}

// ListCategories returns every category
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListProductsRequest represents catalog query parameters
type ListProductsRequest struct {
	BrandID    int64    `form:"brandId" jsonschema:"minimum=0"`
	CategoryID int64    `form:"categoryId" jsonschema:"minimum=0"`
	Sizes      []string `form:"size"`
	PriceMin   *float64 `form:"priceMin"`
	PriceMax   *float64 `form:"priceMax"`
	InStock    bool     `form:"inStock"`
	Search     string   `form:"search"`
	Page       int      `form:"page" jsonschema:"minimum=1"`
	Limit      int      `form:"limit" jsonschema:"minimum=1,maximum=200"`
}

// ListProductsResponse represents a catalog page
type ListProductsResponse struct {
	Products []types.Product `json:"products" jsonschema:"required"`
	Total    int             `json:"total" jsonschema:"required"`
	Page     int             `json:"page" jsonschema:"required"`
	Limit    int             `json:"limit" jsonschema:"required"`
}

// ListProducts returns a filtered, paginated catalog page
func (h *Handler) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	filters := types.ProductFilters{
		Sizes:       req.Sizes,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		InStockOnly: req.InStock,
		Search:      req.Search,
		Page:        req.Page,
		Limit:       req.Limit,
	}
	if req.BrandID != 0 {
		filters.BrandIDs = []int64{req.BrandID}
	}
	if req.CategoryID != 0 {
		filters.CategoryIDs = []int64{req.CategoryID}
	}

	products, total, err := h.store.ListProducts(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	c.JSON(http.StatusOK, ListProductsResponse{
		Products: products,
		Total:    total,
		Page:     req.Page,
		Limit:    req.Limit,
	})
}

// GetProduct returns one product by ID
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		var notFound *types.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// PriceHistoryResponse represents a product's price history
type PriceHistoryResponse struct {
	ProductID    int64              `json:"productId" jsonschema:"required"`
	PriceHistory []types.PricePoint `json:"priceHistory" jsonschema:"required"`
}

// GetPriceHistory returns a product's price history
func (h *Handler) GetPriceHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		var notFound *types.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	c.JSON(http.StatusOK, PriceHistoryResponse{
		ProductID:    product.ID,
		PriceHistory: product.PriceHistory,
	})
}
