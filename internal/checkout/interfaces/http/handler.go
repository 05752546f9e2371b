// Package http 结账 HTTP 处理器
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/checkout/application"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/middleware"
)

// CheckoutHandler HTTP 处理器
type CheckoutHandler struct {
	checkoutService *application.CheckoutApplicationService
}

// NewCheckoutHandler 创建 HTTP 处理器
func NewCheckoutHandler(checkoutService *application.CheckoutApplicationService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// RegisterRoutes 注册路由
func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkout := router.Group("/checkout")
	{
		checkout.POST("/quote", h.Quote)
		checkout.POST("/submit", h.Submit)
	}
}

// QuoteRequest 报价请求
type QuoteRequest struct {
	City   string `json:"city"`
	Coupon string `json:"coupon"`
	Force  bool   `json:"force"`
}

// Quote 计算结账报价
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), application.QuoteCommand{
		ClientID: middleware.ClientToken(c),
		City:     req.City,
		Coupon:   req.Coupon,
		Force:    req.Force,
	})
	if err != nil {
		if errors.Is(err, application.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error(c.Request.Context(), "Failed to compute quote", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// SubmitRequest 下单请求
type SubmitRequest struct {
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name"`
	Address1      string `json:"address_1" binding:"required"`
	City          string `json:"city"`
	Phone         string `json:"phone" binding:"required"`
	Email         string `json:"email"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cod bank_transfer"`
	CustomerNote  string `json:"customer_note"`
	Coupon        string `json:"coupon"`
}

// Submit 提交订单
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), application.SubmitCommand{
		ClientID:      middleware.ClientToken(c),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Address1:      req.Address1,
		City:          req.City,
		Phone:         req.Phone,
		Email:         req.Email,
		PaymentMethod: req.PaymentMethod,
		CustomerNote:  req.CustomerNote,
		Coupon:        req.Coupon,
	})
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to submit checkout", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 业务失败（城市缺失、后端拒单）也用 200 返回，错误消息透传给前端
	c.JSON(http.StatusOK, result)
}
