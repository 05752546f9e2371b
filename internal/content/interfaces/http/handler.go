// Package http CMS 内容 HTTP 处理器
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/content/application"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/middleware"
)

// ContentHandler HTTP 处理器
type ContentHandler struct {
	contentService *application.ContentService
}

// NewContentHandler 创建 HTTP 处理器
func NewContentHandler(contentService *application.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// RegisterRoutes 注册路由
func (h *ContentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/pages", h.Pages)
	router.GET("/pages/:slug", h.Page)
	router.GET("/menu", h.Menu)
}

// Pages 当前语言的全部页面
func (h *ContentHandler) Pages(c *gin.Context) {
	locale := middleware.LocaleFrom(c)

	pages, err := h.contentService.Pages(c.Request.Context(), locale)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get pages", "locale", locale, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pages": pages, "locale": locale})
}

// Page 当前语言下按 slug 查单页
func (h *ContentHandler) Page(c *gin.Context) {
	locale := middleware.LocaleFrom(c)
	slug := c.Param("slug")

	page, found, err := h.contentService.Page(c.Request.Context(), locale, slug)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get page", "locale", locale, "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// Menu 当前语言的导航菜单
func (h *ContentHandler) Menu(c *gin.Context) {
	locale := middleware.LocaleFrom(c)
	c.JSON(http.StatusOK, gin.H{"menu": h.contentService.Menu(c.Request.Context(), locale), "locale": locale})
}
