package application

import (
	"context"
	"strings"
	"time"

	"github.com/wyfcoding/storefront/internal/checkout/domain"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// SubmitCommand 下单命令
type SubmitCommand struct {
	ClientID      string
	FirstName     string
	LastName      string
	Address1      string
	City          string
	Phone         string
	Email         string
	PaymentMethod string
	CustomerNote  string
	Coupon        string
}

// SubmitResult 下单结果。失败时 Error 携带后端的第一条错误消息。
type SubmitResult struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SubmitService 下单服务：通过后端会话 checkout，成功后清空本地购物车
type SubmitService struct {
	backend   CheckoutBackend
	carts     CartProvider
	cache     QuoteCache
	quotes    *QuoteService
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewSubmitService 创建下单服务
func NewSubmitService(
	backend CheckoutBackend,
	carts CartProvider,
	cache QuoteCache,
	quotes *QuoteService,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *SubmitService {
	return &SubmitService{backend: backend, carts: carts, cache: cache, quotes: quotes, publisher: publisher, metrics: m}
}

// Submit 提交订单。城市为空在本地拒绝，不触发上游调用。
func (s *SubmitService) Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	if strings.TrimSpace(cmd.City) == "" {
		return &SubmitResult{Success: false, Error: "city is required"}, nil
	}

	cart, err := s.carts.GetCart(ctx, cmd.ClientID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return &SubmitResult{Success: false, Error: ErrEmptyCart.Error()}, nil
	}

	// 报价阶段建立的后端会话优先复用，没有缓存报价时才重建
	token := s.quotes.cachedSessionToken(ctx, cmd.ClientID, cmd.City, cmd.Coupon)
	if token == "" {
		token, err = s.quotes.buildSession(ctx, cart, cmd.Coupon)
		if err != nil {
			return &SubmitResult{Success: false, Error: err.Error()}, nil
		}
	}

	address := woocommerce.Address{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Address1:  cmd.Address1,
		City:      cmd.City,
		Phone:     cmd.Phone,
		Email:     cmd.Email,
	}
	result, err := s.backend.Checkout(ctx, token, &woocommerce.CheckoutPayload{
		PaymentMethod: cmd.PaymentMethod,
		Billing:       address,
		Shipping:      address,
		CustomerNote:  cmd.CustomerNote,
	})
	if err != nil {
		logger.Error(ctx, "Checkout failed", "client_id", cmd.ClientID, "error", err)
		return &SubmitResult{Success: false, Error: err.Error()}, nil
	}

	s.metrics.OrdersCreatedTotal.Inc()

	if err := s.publisher.Publish(ctx, "checkout.order.created", cmd.ClientID, domain.OrderCreatedEvent{
		ClientID:      cmd.ClientID,
		OrderID:       result.OrderID,
		OrderNumber:   result.OrderNumber,
		PaymentMethod: cmd.PaymentMethod,
		CreatedAt:     time.Now().Unix(),
	}); err != nil {
		logger.Error(ctx, "Failed to publish order created event", "order_id", result.OrderID, "error", err)
	}

	// 下单成功后购物车与报价缓存都已过时
	if err := s.carts.ClearCart(ctx, cmd.ClientID); err != nil {
		logger.Warn(ctx, "Failed to clear cart after checkout", "client_id", cmd.ClientID, "error", err)
	}
	if err := s.cache.DeleteByPrefix(ctx, "checkout:quote:"+cmd.ClientID); err != nil {
		logger.Warn(ctx, "Failed to invalidate quote cache", "client_id", cmd.ClientID, "error", err)
	}

	return &SubmitResult{
		Success:     true,
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		Email:       result.Email,
	}, nil
}
