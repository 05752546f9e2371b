// Package http 运维接口：缓存主动失效与后端连通性诊断
package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// Invalidator 可主动失效的缓存层
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Probe 诊断探测用的后端读操作
type Probe interface {
	Products(ctx context.Context, limit int) ([]woocommerce.Product, error)
	Categories(ctx context.Context) ([]woocommerce.Category, error)
}

// OpsHandler 运维 HTTP 处理器
type OpsHandler struct {
	secret       string
	invalidators []Invalidator
	probe        Probe
}

// NewOpsHandler 创建运维处理器
func NewOpsHandler(secret string, probe Probe, invalidators ...Invalidator) *OpsHandler {
	return &OpsHandler{secret: secret, invalidators: invalidators, probe: probe}
}

// RegisterRoutes 注册路由
func (h *OpsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/revalidate", h.Revalidate)
	router.GET("/diagnostics", h.Diagnostics)
}

// Revalidate 按共享密钥触发目录与内容缓存失效
func (h *OpsHandler) Revalidate(c *gin.Context) {
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(c.Query("secret")), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}

	for _, inv := range h.invalidators {
		if err := inv.Invalidate(c.Request.Context()); err != nil {
			logger.Error(c.Request.Context(), "Cache invalidation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"revalidated": true})
}

// diagnosticsCheck 单项探测结果
type diagnosticsCheck struct {
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
	Count     int    `json:"count"`
}

// Diagnostics 后端连通性诊断：商品与分类各打一个来回
func (h *OpsHandler) Diagnostics(c *gin.Context) {
	ctx := c.Request.Context()

	products := h.check(func() (int, error) {
		items, err := h.probe.Products(ctx, 1)
		return len(items), err
	})
	categories := h.check(func() (int, error) {
		items, err := h.probe.Categories(ctx)
		return len(items), err
	})

	status := http.StatusOK
	if !products.OK || !categories.OK {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"products":   products,
		"categories": categories,
	})
}

func (h *OpsHandler) check(fn func() (int, error)) diagnosticsCheck {
	start := time.Now()
	count, err := fn()
	result := diagnosticsCheck{
		OK:        err == nil,
		LatencyMS: time.Since(start).Milliseconds(),
		Count:     count,
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
