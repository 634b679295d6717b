package handlers

import (
	"context"
	"net/http"
	"strconv"

	"webstore/internal/models"
	"webstore/internal/repository"
	"webstore/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog services.CatalogService
	stock   services.StockService
	logger  *zap.Logger
}

func NewProductHandler(catalog services.CatalogService, stock services.StockService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, stock: stock, logger: logger}
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.catalog.GetAllProducts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var update services.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) ApplyDiscount(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DiscountPercentage == nil {
		badRequest(c, "Missing discount_percentage")
		return
	}
	product, err := h.catalog.ApplyDiscount(c.Request.Context(), id, *req.DiscountPercentage)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Discount applied successfully",
		"product": product,
	})
}

func (h *ProductHandler) GetQuantity(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	level, err := h.stock.GetCurrentQuantity(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	search := services.ProductSearch{
		ProductFilter: repository.ProductFilter{
			Gender:   c.Query("gender"),
			Category: c.Query("category"),
			Brand:    c.Query("brand"),
			Size:     c.Query("size"),
			Color:    c.Query("color"),
		},
		Availability: c.Query("availability"),
	}
	var ok bool
	if search.PriceMin, ok = decimalQuery(c, "price_min"); !ok {
		return
	}
	if search.PriceMax, ok = decimalQuery(c, "price_max"); !ok {
		return
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), search)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *ProductHandler) GetCategories(c *gin.Context) {
	list(c, h.logger, h.catalog.GetCategories)
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	create(c, h.logger, func(name string) (interface{}, error) {
		category := &models.Category{Name: name}
		return category, h.catalog.CreateCategory(c.Request.Context(), category)
	})
}

func (h *ProductHandler) GetBrands(c *gin.Context) {
	list(c, h.logger, h.catalog.GetBrands)
}

func (h *ProductHandler) CreateBrand(c *gin.Context) {
	create(c, h.logger, func(name string) (interface{}, error) {
		brand := &models.Brand{Name: name}
		return brand, h.catalog.CreateBrand(c.Request.Context(), brand)
	})
}

func (h *ProductHandler) GetSizes(c *gin.Context) {
	list(c, h.logger, h.catalog.GetSizes)
}

func (h *ProductHandler) CreateSize(c *gin.Context) {
	create(c, h.logger, func(name string) (interface{}, error) {
		size := &models.Size{Name: name}
		return size, h.catalog.CreateSize(c.Request.Context(), size)
	})
}

func (h *ProductHandler) GetColors(c *gin.Context) {
	list(c, h.logger, h.catalog.GetColors)
}

func (h *ProductHandler) CreateColor(c *gin.Context) {
	create(c, h.logger, func(name string) (interface{}, error) {
		color := &models.Color{Name: name}
		return color, h.catalog.CreateColor(c.Request.Context(), color)
	})
}

func list[T any](c *gin.Context, logger *zap.Logger, fetch func(ctx context.Context) ([]T, error)) {
	rows, err := fetch(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func create(c *gin.Context, logger *zap.Logger, save func(name string) (interface{}, error)) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing name")
		return
	}
	row, err := save(req.Name)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func decimalQuery(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		badRequest(c, "Invalid "+name)
		return nil, false
	}
	return &value, true
}
