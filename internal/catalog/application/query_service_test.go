package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

var testMetrics = metrics.New("catalog_test")

// fakeSource 可编程的目录来源桩
type fakeSource struct {
	products      []woocommerce.Product
	productCalls  int
	productsErr   error
	categories    []woocommerce.Category
	categoriesErr error
	terms         map[string][]woocommerce.AttributeTerm
}

func (f *fakeSource) Products(_ context.Context, _ int) ([]woocommerce.Product, error) {
	f.productCalls++
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return f.products, nil
}

func (f *fakeSource) Categories(_ context.Context) ([]woocommerce.Category, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeSource) AttributeTerms(_ context.Context, taxonomy string) ([]woocommerce.AttributeTerm, error) {
	return f.terms[taxonomy], nil
}

// fakeCache 内存缓存桩
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) DeleteByPrefix(_ context.Context, prefix string) error {
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

func sampleProducts() []woocommerce.Product {
	return []woocommerce.Product{
		{
			ID: 1, Name: "Leather tote", Slug: "leather-tote",
			Price: "80", RegularPrice: "100", SalePrice: "80",
			Categories: []string{"bags"},
			Attributes: map[string][]string{"pa_color": {"Black"}},
		},
		{
			ID: 2, Name: "Canvas backpack", Slug: "canvas-backpack",
			Price: "60", RegularPrice: "60",
			Categories: []string{"backpacks"},
			Attributes: map[string][]string{"pa_color": {"Green"}},
		},
	}
}

func TestListProductsFiltersAndDecorates(t *testing.T) {
	source := &fakeSource{products: sampleProducts()}
	svc := NewCatalogQueryService(source, newFakeCache(), testMetrics)

	views := svc.ListProducts(context.Background(), domain.Filter{Category: "bags"})

	require.Len(t, views, 1)
	assert.Equal(t, int64(1), views[0].ID)
	assert.Equal(t, 20, views[0].DiscountPercent)
}

func TestListProductsUsesCache(t *testing.T) {
	source := &fakeSource{products: sampleProducts()}
	svc := NewCatalogQueryService(source, newFakeCache(), testMetrics)

	svc.ListProducts(context.Background(), domain.Filter{})
	svc.ListProducts(context.Background(), domain.Filter{Color: "black"})

	assert.Equal(t, 1, source.productCalls)
}

func TestListProductsDegradesToEmpty(t *testing.T) {
	source := &fakeSource{productsErr: errors.New("upstream down")}
	svc := NewCatalogQueryService(source, newFakeCache(), testMetrics)

	views := svc.ListProducts(context.Background(), domain.Filter{})
	assert.Empty(t, views)
}

func TestGetProductBySlug(t *testing.T) {
	source := &fakeSource{products: sampleProducts()}
	svc := NewCatalogQueryService(source, newFakeCache(), testMetrics)

	view, found := svc.GetProductBySlug(context.Background(), "canvas-backpack")
	require.True(t, found)
	assert.Equal(t, int64(2), view.ID)

	_, found = svc.GetProductBySlug(context.Background(), "missing")
	assert.False(t, found)
}

func TestCategoriesDegradesToEmpty(t *testing.T) {
	source := &fakeSource{categoriesErr: errors.New("upstream down")}
	svc := NewCatalogQueryService(source, newFakeCache(), testMetrics)

	assert.Empty(t, svc.Categories(context.Background()))
}

func TestFilters(t *testing.T) {
	source := &fakeSource{
		categories: []woocommerce.Category{{ID: 1, Slug: "bags"}},
		terms: map[string][]woocommerce.AttributeTerm{
			"pa_color":    {{Name: "Black", Slug: "black"}},
			"pa_material": {{Name: "Leather", Slug: "leather"}},
		},
	}
	svc := NewCatalogQueryService(source, newFakeCache(), testMetrics)

	options := svc.Filters(context.Background())
	assert.Len(t, options.Categories, 1)
	assert.Len(t, options.Colors, 1)
	assert.Len(t, options.Materials, 1)
}

func TestInvalidateClearsCache(t *testing.T) {
	source := &fakeSource{products: sampleProducts()}
	cache := newFakeCache()
	svc := NewCatalogQueryService(source, cache, testMetrics)

	svc.ListProducts(context.Background(), domain.Filter{})
	require.NotEmpty(t, cache.data)

	require.NoError(t, svc.Invalidate(context.Background()))
	assert.Empty(t, cache.data)

	svc.ListProducts(context.Background(), domain.Filter{})
	assert.Equal(t, 2, source.productCalls)
}
