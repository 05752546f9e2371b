// Package http 商品目录 HTTP 处理器
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
)

// CatalogHandler HTTP 处理器
type CatalogHandler struct {
	catalogService *application.CatalogQueryService
}

// NewCatalogHandler 创建 HTTP 处理器
func NewCatalogHandler(catalogService *application.CatalogQueryService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes 注册路由
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/products", h.ListProducts)
	router.GET("/products/:slug", h.GetProduct)
	router.GET("/categories", h.Categories)
	router.GET("/filters", h.Filters)
}

// ListProducts 按条件筛选商品
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := domain.Filter{
		Category: c.Query("category"),
		Color:    c.Query("color"),
		Material: c.Query("material"),
		MinPrice: c.Query("min_price"),
		MaxPrice: c.Query("max_price"),
	}

	products := h.catalogService.ListProducts(c.Request.Context(), filter)
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetProduct 按 slug 查单个商品
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, found := h.catalogService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// Categories 分类列表
func (h *CatalogHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalogService.Categories(c.Request.Context())})
}

// Filters 筛选面板可选项
func (h *CatalogHandler) Filters(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalogService.Filters(c.Request.Context()))
}
