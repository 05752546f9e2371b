// Package http 支付 HTTP 处理器：发起支付与网关回调
package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/payment/application"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/middleware"
)

// signatureHeader 网关回调签名头
const signatureHeader = "X-Signature"

// PaymentHandler HTTP 处理器
type PaymentHandler struct {
	orchestrator *application.Orchestrator
	webhooks     *application.WebhookService
}

// NewPaymentHandler 创建 HTTP 处理器
func NewPaymentHandler(orchestrator *application.Orchestrator, webhooks *application.WebhookService) *PaymentHandler {
	return &PaymentHandler{orchestrator: orchestrator, webhooks: webhooks}
}

// RegisterRoutes 注册路由
func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payment := router.Group("/payment")
	{
		payment.POST("/order", h.StartPayment)
		payment.POST("/callback", h.Callback)
	}
}

// StartPaymentRequest 发起支付请求
type StartPaymentRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name"`
	Address1     string `json:"address_1" binding:"required"`
	City         string `json:"city"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email"`
	CustomerNote string `json:"customer_note"`
	Coupon       string `json:"coupon"`
}

// StartPayment 发起银行卡支付
func (h *PaymentHandler) StartPayment(c *gin.Context) {
	var req StartPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orchestrator.StartPayment(c.Request.Context(), application.StartPaymentCommand{
		ClientID:     middleware.ClientToken(c),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address1:     req.Address1,
		City:         req.City,
		Phone:        req.Phone,
		Email:        req.Email,
		CustomerNote: req.CustomerNote,
		Coupon:       req.Coupon,
	})
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to start payment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 业务失败也用 200 返回，错误消息透传给前端
	c.JSON(http.StatusOK, result)
}

// Callback 网关支付回调
func (h *PaymentHandler) Callback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	outcome, err := h.webhooks.Handle(c.Request.Context(), body, c.GetHeader(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, application.ErrMalformedCallback):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error(c.Request.Context(), "Webhook processing failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}
