// Package application 商品目录用例逻辑：带缓存的查询与筛选
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

const (
	// productsCacheKey 商品列表缓存键
	productsCacheKey = "catalog:products"
	// categoriesCacheKey 分类缓存键
	categoriesCacheKey = "catalog:categories"
	// termsCacheKeyPrefix 属性项缓存键前缀
	termsCacheKeyPrefix = "catalog:terms:"

	// catalogTTL 目录缓存有效期，主动失效走 Invalidate
	catalogTTL = 5 * time.Minute
	// productsFetchLimit 单次拉取的商品上限
	productsFetchLimit = 200
)

// CatalogSource 目录数据来源
type CatalogSource interface {
	Products(ctx context.Context, limit int) ([]woocommerce.Product, error)
	Categories(ctx context.Context) ([]woocommerce.Category, error)
	AttributeTerms(ctx context.Context, taxonomy string) ([]woocommerce.AttributeTerm, error)
}

// CatalogCache 目录缓存接口
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ProductView 商品展示视图，附带折扣百分比
type ProductView struct {
	woocommerce.Product
	DiscountPercent int `json:"discount_percent,omitempty"`
}

// FilterOptions 筛选面板可选项
type FilterOptions struct {
	Categories []woocommerce.Category      `json:"categories"`
	Colors     []woocommerce.AttributeTerm `json:"colors"`
	Materials  []woocommerce.AttributeTerm `json:"materials"`
}

// CatalogQueryService 目录查询服务。
// 列表读不挂页面：上游失败时退化为空列表而不是报错。
type CatalogQueryService struct {
	source  CatalogSource
	cache   CatalogCache
	metrics *metrics.Metrics
}

// NewCatalogQueryService 创建目录查询服务
func NewCatalogQueryService(source CatalogSource, cache CatalogCache, m *metrics.Metrics) *CatalogQueryService {
	return &CatalogQueryService{source: source, cache: cache, metrics: m}
}

// ListProducts 按条件筛选商品
func (s *CatalogQueryService) ListProducts(ctx context.Context, filter domain.Filter) []ProductView {
	products := s.allProducts(ctx)

	views := make([]ProductView, 0, len(products))
	for i := range products {
		p := &products[i]
		if !filter.Matches(p) {
			continue
		}
		views = append(views, ProductView{
			Product:         *p,
			DiscountPercent: domain.DiscountPercent(p),
		})
	}
	return views
}

// GetProductBySlug 按 slug 查单个商品
func (s *CatalogQueryService) GetProductBySlug(ctx context.Context, slug string) (*ProductView, bool) {
	products := s.allProducts(ctx)
	for i := range products {
		if products[i].Slug == slug {
			return &ProductView{
				Product:         products[i],
				DiscountPercent: domain.DiscountPercent(&products[i]),
			}, true
		}
	}
	return nil, false
}

// Categories 分类列表
func (s *CatalogQueryService) Categories(ctx context.Context) []woocommerce.Category {
	var cached []woocommerce.Category
	if found, err := s.cache.GetJSON(ctx, categoriesCacheKey, &cached); err == nil && found {
		return cached
	}

	categories, err := s.source.Categories(ctx)
	if err != nil {
		logger.Warn(ctx, "Categories fetch failed, degrading to empty list", "error", err)
		return []woocommerce.Category{}
	}

	if err := s.cache.SetJSON(ctx, categoriesCacheKey, categories, catalogTTL); err != nil {
		logger.Warn(ctx, "Categories cache write failed", "error", err)
	}
	return categories
}

// Filters 筛选面板可选项（分类、颜色、材质）
func (s *CatalogQueryService) Filters(ctx context.Context) *FilterOptions {
	return &FilterOptions{
		Categories: s.Categories(ctx),
		Colors:     s.terms(ctx, "pa_color"),
		Materials:  s.terms(ctx, "pa_material"),
	}
}

// Invalidate 主动失效全部目录缓存
func (s *CatalogQueryService) Invalidate(ctx context.Context) error {
	if err := s.cache.DeleteByPrefix(ctx, "catalog:"); err != nil {
		return err
	}
	s.metrics.CacheInvalidationTotal.Inc()
	return nil
}

// allProducts 全量商品，带缓存；上游失败退化为空列表
func (s *CatalogQueryService) allProducts(ctx context.Context) []woocommerce.Product {
	var cached []woocommerce.Product
	if found, err := s.cache.GetJSON(ctx, productsCacheKey, &cached); err == nil && found {
		return cached
	}

	products, err := s.source.Products(ctx, productsFetchLimit)
	if err != nil {
		logger.Warn(ctx, "Products fetch failed, degrading to empty list", "error", err)
		return []woocommerce.Product{}
	}

	if err := s.cache.SetJSON(ctx, productsCacheKey, products, catalogTTL); err != nil {
		logger.Warn(ctx, "Products cache write failed", "error", err)
	}
	return products
}

// terms 指定属性的可选项，带缓存
func (s *CatalogQueryService) terms(ctx context.Context, taxonomy string) []woocommerce.AttributeTerm {
	key := termsCacheKeyPrefix + taxonomy

	var cached []woocommerce.AttributeTerm
	if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
		return cached
	}

	terms, err := s.source.AttributeTerms(ctx, taxonomy)
	if err != nil {
		logger.Warn(ctx, "Attribute terms fetch failed, degrading to empty list", "taxonomy", taxonomy, "error", err)
		return []woocommerce.AttributeTerm{}
	}

	if err := s.cache.SetJSON(ctx, key, terms, catalogTTL); err != nil {
		logger.Warn(ctx, "Attribute terms cache write failed", "taxonomy", taxonomy, "error", err)
	}
	return terms
}
