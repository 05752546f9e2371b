package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/checkout/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// CheckoutApplicationService 结账服务门面，整合报价服务和下单服务
type CheckoutApplicationService struct {
	quoteService  *QuoteService
	submitService *SubmitService
}

// NewCheckoutApplicationService 创建结账服务门面实例
func NewCheckoutApplicationService(
	backend CheckoutBackend,
	carts CartProvider,
	cache QuoteCache,
	shipping *domain.ShippingPolicy,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *CheckoutApplicationService {
	quoteService := NewQuoteService(backend, carts, cache, shipping, m)
	return &CheckoutApplicationService{
		quoteService:  quoteService,
		submitService: NewSubmitService(backend, carts, cache, quoteService, publisher, m),
	}
}

// Quote 计算结账报价
func (s *CheckoutApplicationService) Quote(ctx context.Context, cmd QuoteCommand) (*domain.Quote, error) {
	return s.quoteService.Quote(ctx, cmd)
}

// Submit 提交订单
func (s *CheckoutApplicationService) Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	return s.submitService.Submit(ctx, cmd)
}
