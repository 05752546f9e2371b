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
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

var testMetrics = metrics.New("content_test")

// fakeSource 内容来源桩
type fakeSource struct {
	pages     map[string][]woocommerce.Page
	pageCalls int
	pagesErr  error
	menus     map[string][]woocommerce.MenuItem
	menuErr   error
}

func (f *fakeSource) Pages(_ context.Context, locale string) ([]woocommerce.Page, error) {
	f.pageCalls++
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	return f.pages[locale], nil
}

func (f *fakeSource) Menu(_ context.Context, locale string) ([]woocommerce.MenuItem, error) {
	if f.menuErr != nil {
		return nil, f.menuErr
	}
	return f.menus[locale], nil
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

func TestPagesCachedPerLocale(t *testing.T) {
	source := &fakeSource{pages: map[string][]woocommerce.Page{
		"hy": {{ID: 1, Slug: "about", Locale: "hy"}},
		"ru": {{ID: 2, Slug: "about", Locale: "ru"}},
	}}
	svc := NewContentService(source, newFakeCache(), testMetrics)

	hy, err := svc.Pages(context.Background(), "hy")
	require.NoError(t, err)
	require.Len(t, hy, 1)
	assert.Equal(t, int64(1), hy[0].ID)

	ru, err := svc.Pages(context.Background(), "ru")
	require.NoError(t, err)
	assert.Equal(t, int64(2), ru[0].ID)

	// 二次读取走缓存
	_, err = svc.Pages(context.Background(), "hy")
	require.NoError(t, err)
	assert.Equal(t, 2, source.pageCalls)
}

func TestPageBySlug(t *testing.T) {
	source := &fakeSource{pages: map[string][]woocommerce.Page{
		"en": {{ID: 1, Slug: "delivery", Title: "Delivery", Locale: "en"}},
	}}
	svc := NewContentService(source, newFakeCache(), testMetrics)

	page, found, err := svc.Page(context.Background(), "en", "delivery")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Delivery", page.Title)

	_, found, err = svc.Page(context.Background(), "en", "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMenuDegradesToEmpty(t *testing.T) {
	source := &fakeSource{menuErr: errors.New("upstream down")}
	svc := NewContentService(source, newFakeCache(), testMetrics)

	assert.Empty(t, svc.Menu(context.Background(), "hy"))
}

func TestInvalidateClearsContentCache(t *testing.T) {
	source := &fakeSource{pages: map[string][]woocommerce.Page{"hy": {{ID: 1, Slug: "about"}}}}
	cache := newFakeCache()
	svc := NewContentService(source, cache, testMetrics)

	_, err := svc.Pages(context.Background(), "hy")
	require.NoError(t, err)
	require.NotEmpty(t, cache.data)

	require.NoError(t, svc.Invalidate(context.Background()))
	assert.Empty(t, cache.data)
}
