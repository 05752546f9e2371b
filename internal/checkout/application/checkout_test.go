package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	"github.com/wyfcoding/storefront/internal/checkout/domain"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

var testMetrics = metrics.New("checkout_test")

// fakeBackend 可编程的后端会话桩
type fakeBackend struct {
	addCalls    int
	totalsCalls int
	lastToken   string
	totals      *woocommerce.CartTotals
	addErr      error
	totalsErr   error
	checkoutErr error
	couponErr   error
	order       *woocommerce.CheckoutResult
}

func (f *fakeBackend) AddToCart(_ context.Context, token string, _, _ int64, _ int) (string, error) {
	if f.addErr != nil {
		return "", f.addErr
	}
	f.addCalls++
	f.lastToken = fmt.Sprintf("tok-%d", f.addCalls)
	return f.lastToken, nil
}

func (f *fakeBackend) ApplyCoupon(_ context.Context, token, _ string) (string, error) {
	if f.couponErr != nil {
		return "", f.couponErr
	}
	return token, nil
}

func (f *fakeBackend) GetCartTotals(_ context.Context, token string) (*woocommerce.CartTotals, string, error) {
	f.totalsCalls++
	if f.totalsErr != nil {
		return nil, token, f.totalsErr
	}
	return f.totals, token, nil
}

func (f *fakeBackend) Checkout(_ context.Context, token string, _ *woocommerce.CheckoutPayload) (*woocommerce.CheckoutResult, error) {
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	f.lastToken = token
	return f.order, nil
}

// fakeCarts 固定内容的购物车桩
type fakeCarts struct {
	cart    *cartapp.CartDTO
	cleared bool
}

func (f *fakeCarts) GetCart(_ context.Context, _ string) (*cartapp.CartDTO, error) {
	return f.cart, nil
}

func (f *fakeCarts) ClearCart(_ context.Context, _ string) error {
	f.cleared = true
	return nil
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
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(f.data, key)
		}
	}
	return nil
}

// fakePublisher 收集事件的发布桩
type fakePublisher struct {
	topics []string
}

func (f *fakePublisher) Publish(_ context.Context, topic string, _ string, _ any) error {
	f.topics = append(f.topics, topic)
	return nil
}

func testCart() *cartapp.CartDTO {
	return &cartapp.CartDTO{
		Hydrated: true,
		Items: []cartapp.CartItemDTO{
			{ProductID: 1, Name: "Tote", Price: "50", Quantity: 2},
			{ProductID: 2, Name: "Wallet", Price: "140", Quantity: 1},
		},
	}
}

func testPolicy() *domain.ShippingPolicy {
	return domain.NewShippingPolicy("200", "5", "10", []string{"Yerevan"})
}

func TestQuoteAuthoritative(t *testing.T) {
	backend := &fakeBackend{
		totals: &woocommerce.CartTotals{
			Subtotal:       "240",
			DiscountTotal:  "48",
			AppliedCoupons: []string{"summer20"},
		},
	}
	carts := &fakeCarts{cart: testCart()}
	svc := NewQuoteService(backend, carts, newFakeCache(), testPolicy(), testMetrics)

	quote, err := svc.Quote(context.Background(), QuoteCommand{
		ClientID: "c1", City: "Yerevan", Coupon: "SUMMER20",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QuoteAuthoritative, quote.Kind)
	assert.Equal(t, "240", quote.Subtotal)
	assert.Equal(t, "48", quote.Discount)
	// 毛小计 240 >= 200，免运费；优惠不影响免邮资格
	assert.Equal(t, "0", quote.ShippingFee)
	assert.Equal(t, "192", quote.Total)
	assert.Equal(t, []string{"summer20"}, quote.AppliedCoupons)
	assert.Equal(t, 2, backend.addCalls)
}

func TestQuoteCached(t *testing.T) {
	backend := &fakeBackend{totals: &woocommerce.CartTotals{Subtotal: "100"}}
	carts := &fakeCarts{cart: testCart()}
	svc := NewQuoteService(backend, carts, newFakeCache(), testPolicy(), testMetrics)

	cmd := QuoteCommand{ClientID: "c1", City: "Yerevan"}

	_, err := svc.Quote(context.Background(), cmd)
	require.NoError(t, err)
	_, err = svc.Quote(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.totalsCalls)

	// force 跳过缓存重算
	_, err = svc.Quote(context.Background(), QuoteCommand{ClientID: "c1", City: "Yerevan", Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.totalsCalls)
}

func TestQuoteDegradesToEstimate(t *testing.T) {
	backend := &fakeBackend{addErr: errors.New("upstream down")}
	carts := &fakeCarts{cart: testCart()}
	cache := newFakeCache()
	svc := NewQuoteService(backend, carts, cache, testPolicy(), testMetrics)

	quote, err := svc.Quote(context.Background(), QuoteCommand{ClientID: "c1", City: "Gyumri"})
	require.NoError(t, err)

	// 2×50 + 1×140 = 240
	assert.Equal(t, domain.QuoteEstimated, quote.Kind)
	assert.Equal(t, "240", quote.Subtotal)
	assert.Equal(t, "0", quote.Discount)
	assert.Equal(t, "0", quote.ShippingFee)
	assert.Equal(t, "240", quote.Total)

	// 估算报价不缓存
	assert.Empty(t, cache.data)
}

func TestQuoteEstimatedOmitsShippingFee(t *testing.T) {
	backend := &fakeBackend{addErr: errors.New("upstream down")}
	carts := &fakeCarts{cart: &cartapp.CartDTO{
		Hydrated: true,
		Items:    []cartapp.CartItemDTO{{ProductID: 1, Name: "Tote", Price: "50", Quantity: 2}},
	}}
	svc := NewQuoteService(backend, carts, newFakeCache(), testPolicy(), testMetrics)

	quote, err := svc.Quote(context.Background(), QuoteCommand{ClientID: "c1", City: "Yerevan"})
	require.NoError(t, err)

	// 免邮阈值之下本应收首都区运费，但估算结果不含运费
	assert.Equal(t, domain.QuoteEstimated, quote.Kind)
	assert.Equal(t, "100", quote.Subtotal)
	assert.Equal(t, "0", quote.ShippingFee)
	assert.Equal(t, "100", quote.Total)
}

func TestQuoteEmptyCart(t *testing.T) {
	carts := &fakeCarts{cart: &cartapp.CartDTO{Hydrated: true}}
	svc := NewQuoteService(&fakeBackend{}, carts, newFakeCache(), testPolicy(), testMetrics)

	_, err := svc.Quote(context.Background(), QuoteCommand{ClientID: "c1", City: "Yerevan"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitRequiresCity(t *testing.T) {
	backend := &fakeBackend{}
	carts := &fakeCarts{cart: testCart()}
	svc := newSubmitForTest(backend, carts, newFakeCache(), &fakePublisher{})

	result, err := svc.Submit(context.Background(), SubmitCommand{
		ClientID: "c1", PaymentMethod: "cod", City: "  ",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "city is required", result.Error)
	// 本地拒绝，不触发上游
	assert.Zero(t, backend.addCalls)
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	backend := &fakeBackend{
		order: &woocommerce.CheckoutResult{OrderID: 77, OrderNumber: "77"},
	}
	carts := &fakeCarts{cart: testCart()}
	publisher := &fakePublisher{}
	svc := newSubmitForTest(backend, carts, newFakeCache(), publisher)

	result, err := svc.Submit(context.Background(), SubmitCommand{
		ClientID: "c1", City: "Yerevan", PaymentMethod: "cod",
		FirstName: "Ani", Phone: "+37400000000",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, int64(77), result.OrderID)
	assert.True(t, carts.cleared)
	assert.Contains(t, publisher.topics, "checkout.order.created")
}

func TestSubmitReusesQuotedSession(t *testing.T) {
	backend := &fakeBackend{
		totals: &woocommerce.CartTotals{Subtotal: "240"},
		order:  &woocommerce.CheckoutResult{OrderID: 88, OrderNumber: "88"},
	}
	carts := &fakeCarts{cart: testCart()}
	cache := newFakeCache()
	quotes := NewQuoteService(backend, carts, cache, testPolicy(), testMetrics)
	svc := NewSubmitService(backend, carts, cache, quotes, &fakePublisher{}, testMetrics)

	quote, err := quotes.Quote(context.Background(), QuoteCommand{ClientID: "c1", City: "Yerevan"})
	require.NoError(t, err)
	require.Equal(t, domain.QuoteAuthoritative, quote.Kind)
	addsAfterQuote := backend.addCalls

	result, err := svc.Submit(context.Background(), SubmitCommand{
		ClientID: "c1", City: "Yerevan", PaymentMethod: "cod",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	// 下单复用报价携带的会话令牌，不重建后端购物车会话
	assert.Equal(t, addsAfterQuote, backend.addCalls)
	assert.Equal(t, quote.SessionToken, backend.lastToken)
}

func TestSubmitSurfacesBackendError(t *testing.T) {
	backend := &fakeBackend{checkoutErr: errors.New("coupon expired")}
	carts := &fakeCarts{cart: testCart()}
	svc := newSubmitForTest(backend, carts, newFakeCache(), &fakePublisher{})

	result, err := svc.Submit(context.Background(), SubmitCommand{
		ClientID: "c1", City: "Yerevan", PaymentMethod: "bank_transfer",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "coupon expired", result.Error)
	assert.False(t, carts.cleared)
}

func newSubmitForTest(backend CheckoutBackend, carts CartProvider, cache QuoteCache, publisher *fakePublisher) *SubmitService {
	quotes := NewQuoteService(backend, carts, cache, testPolicy(), testMetrics)
	return NewSubmitService(backend, carts, cache, quotes, publisher, testMetrics)
}
