// Package http 心愿单 HTTP 处理器
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/wishlist/application"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/middleware"
)

// WishlistHandler HTTP 处理器
type WishlistHandler struct {
	wishlistService *application.WishlistApplicationService
}

// NewWishlistHandler 创建 HTTP 处理器
func NewWishlistHandler(wishlistService *application.WishlistApplicationService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// RegisterRoutes 注册路由
func (h *WishlistHandler) RegisterRoutes(router *gin.RouterGroup) {
	wishlist := router.Group("/wishlist")
	{
		wishlist.GET("", h.GetWishlist)
		wishlist.POST("/toggle", h.ToggleItem)
		wishlist.GET("/contains/:id", h.Contains)
	}
}

// GetWishlist 获取心愿单快照
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	clientID := middleware.ClientToken(c)

	wishlist, err := h.wishlistService.GetWishlist(c.Request.Context(), clientID)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get wishlist", "client_id", clientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, wishlist)
}

// ToggleItemRequest toggle 请求
type ToggleItemRequest struct {
	ProductID     int64             `json:"id" binding:"required"`
	Name          string            `json:"name" binding:"required"`
	Price         string            `json:"price"`
	SalePrice     string            `json:"sale_price"`
	RegularPrice  string            `json:"regular_price"`
	Image         string            `json:"image"`
	Slug          string            `json:"slug"`
	Attributes    map[string]string `json:"attributes"`
	StockQuantity int               `json:"stock_quantity"`
	StockStatus   string            `json:"stock_status"`
	Categories    []string          `json:"categories"`
}

// ToggleItem 翻转商品的心愿单成员关系
func (h *WishlistHandler) ToggleItem(c *gin.Context) {
	var req ToggleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.wishlistService.ToggleItem(c.Request.Context(), application.ToggleItemCommand{
		ClientID:      middleware.ClientToken(c),
		ProductID:     req.ProductID,
		Name:          req.Name,
		Price:         req.Price,
		SalePrice:     req.SalePrice,
		RegularPrice:  req.RegularPrice,
		Image:         req.Image,
		Slug:          req.Slug,
		Attributes:    req.Attributes,
		StockQuantity: req.StockQuantity,
		StockStatus:   req.StockStatus,
		Categories:    req.Categories,
	})
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to toggle wishlist item", "product_id", req.ProductID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Contains 商品是否已在心愿单中
func (h *WishlistHandler) Contains(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	contained, err := h.wishlistService.Contains(c.Request.Context(), middleware.ClientToken(c), productID)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to query wishlist membership", "product_id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contained": contained})
}
