// Package application CMS 内容用例逻辑：按语言缓存页面与导航菜单
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// contentTTL 内容缓存有效期，主动失效走 Invalidate
const contentTTL = 10 * time.Minute

// ContentSource CMS 内容来源
type ContentSource interface {
	Pages(ctx context.Context, locale string) ([]woocommerce.Page, error)
	Menu(ctx context.Context, locale string) ([]woocommerce.MenuItem, error)
}

// ContentCache 内容缓存接口
type ContentCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ContentService CMS 内容服务
type ContentService struct {
	source  ContentSource
	cache   ContentCache
	metrics *metrics.Metrics
}

// NewContentService 创建内容服务
func NewContentService(source ContentSource, cache ContentCache, m *metrics.Metrics) *ContentService {
	return &ContentService{source: source, cache: cache, metrics: m}
}

// Pages 指定语言的全部页面
func (s *ContentService) Pages(ctx context.Context, locale string) ([]woocommerce.Page, error) {
	key := "content:pages:" + locale

	var cached []woocommerce.Page
	if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	pages, err := s.source.Pages(ctx, locale)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, pages, contentTTL); err != nil {
		logger.Warn(ctx, "Pages cache write failed", "locale", locale, "error", err)
	}
	return pages, nil
}

// Page 指定语言下按 slug 查单页
func (s *ContentService) Page(ctx context.Context, locale, slug string) (*woocommerce.Page, bool, error) {
	pages, err := s.Pages(ctx, locale)
	if err != nil {
		return nil, false, err
	}
	for i := range pages {
		if pages[i].Slug == slug {
			return &pages[i], true, nil
		}
	}
	return nil, false, nil
}

// Menu 指定语言的导航菜单；上游失败退化为空菜单
func (s *ContentService) Menu(ctx context.Context, locale string) []woocommerce.MenuItem {
	key := "content:menu:" + locale

	var cached []woocommerce.MenuItem
	if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
		return cached
	}

	menu, err := s.source.Menu(ctx, locale)
	if err != nil {
		logger.Warn(ctx, "Menu fetch failed, degrading to empty menu", "locale", locale, "error", err)
		return []woocommerce.MenuItem{}
	}

	if err := s.cache.SetJSON(ctx, key, menu, contentTTL); err != nil {
		logger.Warn(ctx, "Menu cache write failed", "locale", locale, "error", err)
	}
	return menu
}

// Invalidate 主动失效全部内容缓存
func (s *ContentService) Invalidate(ctx context.Context) error {
	if err := s.cache.DeleteByPrefix(ctx, "content:"); err != nil {
		return err
	}
	s.metrics.CacheInvalidationTotal.Inc()
	return nil
}
