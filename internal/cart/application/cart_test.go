package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"gorm.io/gorm"
)

var testMetrics = metrics.New("cart_test")

// fakeRepo 内存仓储桩
type fakeRepo struct {
	carts     map[string]*domain.Cart
	saveCalls int
	nextID    uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{carts: map[string]*domain.Cart{}, nextID: 1}
}

func (r *fakeRepo) GetByClientID(_ context.Context, clientID string) (*domain.Cart, error) {
	cart, ok := r.carts[clientID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cart, nil
}

func (r *fakeRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.saveCalls++
	if cart.ID == 0 {
		cart.ID = r.nextID
		r.nextID++
	}
	r.carts[cart.ClientID] = cart
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, clientID string) error {
	delete(r.carts, clientID)
	return nil
}

// fakePublisher 事件发布桩
type fakePublisher struct {
	topics []string
}

func (f *fakePublisher) Publish(_ context.Context, topic string, _ string, _ any) error {
	f.topics = append(f.topics, topic)
	return nil
}

func TestAddItemCreatesCartAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	svc := NewCartApplicationService(repo, publisher, testMetrics)

	result, err := svc.AddItem(context.Background(), AddItemCommand{
		ClientID: "c1", ProductID: 1, Name: "Tote", Price: "50",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.NoticeAdded, result.Notice.Kind)
	require.Len(t, result.Cart.Items, 1)
	assert.Equal(t, 1, result.Cart.ItemCount)
	assert.Equal(t, "50", result.Cart.TotalPrice)
	assert.True(t, result.Cart.Hydrated)
	assert.Contains(t, publisher.topics, "cart.created")
	assert.Contains(t, publisher.topics, "cart.item.added")
}

func TestAddItemStockRejectionDoesNotSave(t *testing.T) {
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	svc := NewCartApplicationService(repo, publisher, testMetrics)

	cmd := AddItemCommand{ClientID: "c1", ProductID: 1, Name: "Clutch", StockQuantity: 1}

	_, err := svc.AddItem(context.Background(), cmd)
	require.NoError(t, err)
	savesBefore := repo.saveCalls

	result, err := svc.AddItem(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, domain.NoticeStockLimit, result.Notice.Kind)
	assert.Equal(t, savesBefore, repo.saveCalls)
	assert.Contains(t, publisher.topics, "cart.stock.rejected")
	assert.Equal(t, 1, result.Cart.Items[0].Quantity)
}

func TestGetCartMissingReturnsHydratedEmpty(t *testing.T) {
	svc := NewCartApplicationService(newFakeRepo(), &fakePublisher{}, testMetrics)

	cart, err := svc.GetCart(context.Background(), "nobody")
	require.NoError(t, err)

	assert.True(t, cart.Hydrated)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0", cart.TotalPrice)
}

func TestUpdateQuantityRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartApplicationService(repo, &fakePublisher{}, testMetrics)

	_, err := svc.AddItem(context.Background(), AddItemCommand{ClientID: "c1", ProductID: 1, Name: "Tote", Price: "50"})
	require.NoError(t, err)

	result, err := svc.UpdateQuantity(context.Background(), "c1", 1, "inc")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Cart.Items[0].Quantity)

	result, err = svc.UpdateQuantity(context.Background(), "c1", 1, "dec")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Cart.Items[0].Quantity)

	// dec 不会降到 0
	result, err = svc.UpdateQuantity(context.Background(), "c1", 1, "dec")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Cart.Items[0].Quantity)
}

func TestClearCartDeletesAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	svc := NewCartApplicationService(repo, publisher, testMetrics)

	_, err := svc.AddItem(context.Background(), AddItemCommand{ClientID: "c1", ProductID: 1, Name: "Tote"})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(context.Background(), "c1"))
	assert.NotContains(t, repo.carts, "c1")
	assert.Contains(t, publisher.topics, "cart.cleared")

	// 清空不存在的购物车不是错误
	require.NoError(t, svc.ClearCart(context.Background(), "missing"))
}

func TestLegacySchemaWithoutPathIsDiscarded(t *testing.T) {
	repo := newFakeRepo()
	repo.carts["c1"] = &domain.Cart{
		Model:         gorm.Model{ID: 9},
		ClientID:      "c1",
		SchemaVersion: -1,
		Items:         []domain.CartItem{{ProductID: 1, Name: "Old"}},
	}
	svc := NewCartApplicationService(repo, &fakePublisher{}, testMetrics)

	result, err := svc.AddItem(context.Background(), AddItemCommand{ClientID: "c1", ProductID: 2, Name: "New"})
	require.NoError(t, err)

	// 旧结构无迁移路径：内容丢弃，仅保留本次添加
	require.Len(t, result.Cart.Items, 1)
	assert.Equal(t, int64(2), result.Cart.Items[0].ProductID)
}
