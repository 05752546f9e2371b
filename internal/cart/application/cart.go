package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// CartApplicationService 购物车服务门面，整合命令服务和查询服务
type CartApplicationService struct {
	commandService *CartCommandService
	queryService   *CartQueryService
}

// NewCartApplicationService 创建购物车服务门面实例
func NewCartApplicationService(
	repo domain.CartRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *CartApplicationService {
	return &CartApplicationService{
		commandService: NewCartCommandService(repo, publisher, m),
		queryService:   NewCartQueryService(repo),
	}
}

// GetCart 根据客户端令牌获取购物车
func (s *CartApplicationService) GetCart(ctx context.Context, clientID string) (*CartDTO, error) {
	return s.queryService.GetCart(ctx, clientID)
}

// AddItem 处理添加商品到购物车
func (s *CartApplicationService) AddItem(ctx context.Context, cmd AddItemCommand) (*MutationResult, error) {
	return s.commandService.AddItem(ctx, cmd)
}

// RemoveItem 处理从购物车移除商品
func (s *CartApplicationService) RemoveItem(ctx context.Context, clientID string, productID int64) (*MutationResult, error) {
	return s.commandService.RemoveItem(ctx, RemoveItemCommand{ClientID: clientID, ProductID: productID})
}

// UpdateQuantity 处理行数量调整
func (s *CartApplicationService) UpdateQuantity(ctx context.Context, clientID string, productID int64, direction string) (*MutationResult, error) {
	return s.commandService.UpdateQuantity(ctx, UpdateQuantityCommand{
		ClientID:  clientID,
		ProductID: productID,
		Direction: domain.QuantityDirection(direction),
	})
}

// ClearCart 处理清空购物车
func (s *CartApplicationService) ClearCart(ctx context.Context, clientID string) error {
	return s.commandService.ClearCart(ctx, ClearCartCommand{ClientID: clientID})
}
