// Package application 结账用例逻辑：报价与下单编排
package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	"github.com/wyfcoding/storefront/internal/checkout/domain"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// quoteTTL 报价缓存有效期。购物车变更后由调用方传 force 重算。
const quoteTTL = 2 * time.Minute

// ErrEmptyCart 空购物车不可报价/下单
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutBackend 结账依赖的后端购物车会话操作
type CheckoutBackend interface {
	AddToCart(ctx context.Context, token string, productID, variationID int64, quantity int) (string, error)
	ApplyCoupon(ctx context.Context, token, code string) (string, error)
	GetCartTotals(ctx context.Context, token string) (*woocommerce.CartTotals, string, error)
	Checkout(ctx context.Context, token string, payload *woocommerce.CheckoutPayload) (*woocommerce.CheckoutResult, error)
}

// CartProvider 结账读取/清空购物车的接口
type CartProvider interface {
	GetCart(ctx context.Context, clientID string) (*cartapp.CartDTO, error)
	ClearCart(ctx context.Context, clientID string) error
}

// QuoteCache 报价缓存接口
type QuoteCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// cachedQuote 报价缓存载荷。会话令牌只进缓存不进 HTTP 响应，
// 提交下单时取回复用。
type cachedQuote struct {
	domain.Quote
	SessionToken string `json:"session_token,omitempty"`
}

// QuoteCommand 报价命令
type QuoteCommand struct {
	ClientID string
	// City 收货城市，决定运费分区
	City string
	// Coupon 优惠券码，规范化后参与缓存键
	Coupon string
	// Force 跳过缓存强制重算
	Force bool
}

// QuoteService 结账报价服务。
// 权威路径把本地购物车逐行同步进后端会话再读合计；
// 上游不可用时退化为本地估算，不含优惠与运费。
type QuoteService struct {
	backend  CheckoutBackend
	carts    CartProvider
	cache    QuoteCache
	shipping *domain.ShippingPolicy
	metrics  *metrics.Metrics
}

// NewQuoteService 创建报价服务
func NewQuoteService(
	backend CheckoutBackend,
	carts CartProvider,
	cache QuoteCache,
	shipping *domain.ShippingPolicy,
	m *metrics.Metrics,
) *QuoteService {
	return &QuoteService{backend: backend, carts: carts, cache: cache, shipping: shipping, metrics: m}
}

// Quote 计算结账报价
func (s *QuoteService) Quote(ctx context.Context, cmd QuoteCommand) (*domain.Quote, error) {
	cart, err := s.carts.GetCart(ctx, cmd.ClientID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	zone := s.shipping.ZoneFor(cmd.City)
	key := domain.QuoteKey(cmd.ClientID, zone, cmd.Coupon)

	if !cmd.Force {
		var cached cachedQuote
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.Warn(ctx, "Quote cache read failed", "key", key, "error", err)
		}
		if found {
			quote := cached.Quote
			quote.SessionToken = cached.SessionToken
			return &quote, nil
		}
	}

	quote, err := s.authoritativeQuote(ctx, cart, zone, cmd.Coupon)
	if err != nil {
		logger.Warn(ctx, "Authoritative quote failed, falling back to local estimate",
			"client_id", cmd.ClientID, "error", err)
		quote = s.estimatedQuote(cart, zone)
	}

	s.metrics.CheckoutQuotesTotal.WithLabelValues(string(quote.Kind)).Inc()

	// 估算报价不缓存，下一次请求重试权威路径
	if quote.Kind == domain.QuoteAuthoritative {
		payload := cachedQuote{Quote: *quote, SessionToken: quote.SessionToken}
		if err := s.cache.SetJSON(ctx, key, payload, quoteTTL); err != nil {
			logger.Warn(ctx, "Quote cache write failed", "key", key, "error", err)
		}
	}

	return quote, nil
}

// cachedSessionToken 取缓存权威报价携带的后端会话令牌，没有则返回空串
func (s *QuoteService) cachedSessionToken(ctx context.Context, clientID, city, coupon string) string {
	key := domain.QuoteKey(clientID, s.shipping.ZoneFor(city), coupon)

	var cached cachedQuote
	found, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil || !found {
		return ""
	}
	return cached.SessionToken
}

// buildSession 把本地购物车逐行同步进后端会话，令牌逐次串联。
// 返回最终会话令牌。
func (s *QuoteService) buildSession(ctx context.Context, cart *cartapp.CartDTO, coupon string) (string, error) {
	token := ""
	var err error
	for i := range cart.Items {
		item := &cart.Items[i]
		token, err = s.backend.AddToCart(ctx, token, item.ProductID, 0, item.Quantity)
		if err != nil {
			return "", err
		}
	}

	if code := utils.NormalizeCoupon(coupon); code != "" {
		newToken, err := s.backend.ApplyCoupon(ctx, token, code)
		if err != nil {
			// 无效优惠券不阻断报价，合计按无折扣计算
			logger.Warn(ctx, "Coupon apply failed", "code", code, "error", err)
		} else {
			token = newToken
		}
	}

	return token, nil
}

// authoritativeQuote 权威报价：后端会话合计 + 本地运费策略
func (s *QuoteService) authoritativeQuote(ctx context.Context, cart *cartapp.CartDTO, zone domain.Zone, coupon string) (*domain.Quote, error) {
	token, err := s.buildSession(ctx, cart, coupon)
	if err != nil {
		return nil, err
	}

	totals, token, err := s.backend.GetCartTotals(ctx, token)
	if err != nil {
		return nil, err
	}

	gross := utils.ParsePrice(totals.Subtotal)
	discount := utils.ParsePrice(totals.DiscountTotal)
	fee := s.shipping.Fee(zone, gross)
	total := gross.Sub(discount).Add(fee)

	return &domain.Quote{
		Kind:           domain.QuoteAuthoritative,
		Subtotal:       gross.String(),
		ShippingFee:    fee.String(),
		Discount:       discount.String(),
		Total:          total.String(),
		AppliedCoupons: totals.AppliedCoupons,
		SessionToken:   token,
		Zone:           zone,
	}, nil
}

// estimatedQuote 本地估算：行价 × 数量求和，不含优惠与运费
func (s *QuoteService) estimatedQuote(cart *cartapp.CartDTO, zone domain.Zone) *domain.Quote {
	subtotal := decimal.Zero
	for i := range cart.Items {
		line := utils.ParsePrice(cart.Items[i].Price).Mul(decimal.NewFromInt(int64(cart.Items[i].Quantity)))
		subtotal = subtotal.Add(line)
	}

	return &domain.Quote{
		Kind:        domain.QuoteEstimated,
		Subtotal:    subtotal.String(),
		ShippingFee: "0",
		Discount:    "0",
		Total:       subtotal.String(),
		Zone:        zone,
	}
}
