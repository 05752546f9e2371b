// Package http 购物车 HTTP 处理器
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/cart/application"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/middleware"
)

// CartHandler HTTP 处理器
type CartHandler struct {
	cartService *application.CartApplicationService
}

// NewCartHandler 创建 HTTP 处理器
func NewCartHandler(cartService *application.CartApplicationService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes 注册路由
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddItem)
		cart.DELETE("/items/:id", h.RemoveItem)
		cart.POST("/items/:id/quantity", h.UpdateQuantity)
	}
}

// GetCart 获取购物车快照
func (h *CartHandler) GetCart(c *gin.Context) {
	clientID := middleware.ClientToken(c)

	cart, err := h.cartService.GetCart(c.Request.Context(), clientID)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get cart", "client_id", clientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddItemRequest 添加商品请求
type AddItemRequest struct {
	ProductID       int64             `json:"id" binding:"required"`
	Name            string            `json:"name" binding:"required"`
	Price           string            `json:"price"`
	Image           string            `json:"image"`
	Slug            string            `json:"slug"`
	SelectedOptions map[string]string `json:"selected_options"`
	SKU             string            `json:"sku"`
	StockQuantity   int               `json:"stock_quantity"`
}

// AddItem 添加商品到购物车
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.cartService.AddItem(c.Request.Context(), application.AddItemCommand{
		ClientID:        middleware.ClientToken(c),
		ProductID:       req.ProductID,
		Name:            req.Name,
		Price:           req.Price,
		Image:           req.Image,
		Slug:            req.Slug,
		SelectedOptions: req.SelectedOptions,
		SKU:             req.SKU,
		StockQuantity:   req.StockQuantity,
	})
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to add cart item", "product_id", req.ProductID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 库存上限拒绝也是业务上的正常响应，用 200 返回提示
	c.JSON(http.StatusOK, result)
}

// RemoveItem 从购物车移除商品
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	result, err := h.cartService.RemoveItem(c.Request.Context(), middleware.ClientToken(c), productID)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to remove cart item", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateQuantityRequest 数量调整请求
type UpdateQuantityRequest struct {
	Direction string `json:"direction" binding:"required,oneof=inc dec"`
}

// UpdateQuantity 调整行数量
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.cartService.UpdateQuantity(c.Request.Context(), middleware.ClientToken(c), productID, req.Direction)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to update cart quantity", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClearCart 清空购物车
func (h *CartHandler) ClearCart(c *gin.Context) {
	clientID := middleware.ClientToken(c)

	if err := h.cartService.ClearCart(c.Request.Context(), clientID); err != nil {
		logger.Error(c.Request.Context(), "Failed to clear cart", "client_id", clientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
