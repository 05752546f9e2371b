package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"gorm.io/gorm"
)

// AddItemCommand 添加商品到购物车命令
type AddItemCommand struct {
	ClientID        string
	ProductID       int64
	Name            string
	Price           string
	Image           string
	Slug            string
	SelectedOptions map[string]string
	SKU             string
	StockQuantity   int
}

// RemoveItemCommand 从购物车移除商品命令
type RemoveItemCommand struct {
	ClientID  string
	ProductID int64
}

// UpdateQuantityCommand 调整行数量命令
type UpdateQuantityCommand struct {
	ClientID  string
	ProductID int64
	Direction domain.QuantityDirection
}

// ClearCartCommand 清空购物车命令
type ClearCartCommand struct {
	ClientID string
}

// MutationResult 一次购物车变更的结果：用户提示 + 最新快照
type MutationResult struct {
	Notice domain.Notice `json:"notice"`
	Cart   *CartDTO      `json:"cart"`
}

// CartCommandService 购物车命令服务
type CartCommandService struct {
	repo      domain.CartRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewCartCommandService 创建购物车命令服务实例
func NewCartCommandService(
	repo domain.CartRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *CartCommandService {
	return &CartCommandService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
	}
}

// loadOrCreate 加载购物车，不存在时创建空车；加载后执行结构版本迁移
func (s *CartCommandService) loadOrCreate(ctx context.Context, clientID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByClientID(ctx, clientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if cart == nil || cart.ID == 0 {
		cart = &domain.Cart{ClientID: clientID, SchemaVersion: domain.CurrentSchemaVersion}
		if err := s.repo.Save(ctx, cart); err != nil {
			return nil, err
		}

		event := domain.CartCreatedEvent{
			CartID:    cart.ID,
			ClientID:  cart.ClientID,
			Timestamp: time.Now(),
		}
		s.publisher.Publish(ctx, "cart.created", clientID, event)
		return cart, nil
	}

	if !domain.MigrateSchema(cart) {
		// 无迁移路径，旧内容已丢弃，把空车落库
		if err := s.repo.Save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// AddItem 处理添加商品到购物车
func (s *CartCommandService) AddItem(ctx context.Context, cmd AddItemCommand) (*MutationResult, error) {
	cart, err := s.loadOrCreate(ctx, cmd.ClientID)
	if err != nil {
		return nil, err
	}

	notice := cart.AddItem(domain.CartItem{
		ProductID:       cmd.ProductID,
		Name:            cmd.Name,
		Price:           cmd.Price,
		Image:           cmd.Image,
		Slug:            cmd.Slug,
		SelectedOptions: cmd.SelectedOptions,
		SKU:             cmd.SKU,
		StockQuantity:   cmd.StockQuantity,
	})

	if !notice.Mutated() {
		// 库存上限拒绝：状态不变，不落库
		s.metrics.StockRejectionsTotal.Inc()
		event := domain.StockRejectionEvent{
			CartID:    cart.ID,
			ClientID:  cart.ClientID,
			ProductID: cmd.ProductID,
			SKU:       cmd.SKU,
			Timestamp: time.Now(),
		}
		s.publisher.Publish(ctx, "cart.stock.rejected", cmd.ClientID, event)
		return &MutationResult{Notice: notice, Cart: toCartDTO(cart)}, nil
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}

	event := domain.CartItemAddedEvent{
		CartID:    cart.ID,
		ClientID:  cart.ClientID,
		ProductID: cmd.ProductID,
		SKU:       cmd.SKU,
		Quantity:  1,
		Timestamp: time.Now(),
	}
	s.publisher.Publish(ctx, "cart.item.added", cmd.ClientID, event)

	return &MutationResult{Notice: notice, Cart: toCartDTO(cart)}, nil
}

// RemoveItem 处理从购物车移除商品
func (s *CartCommandService) RemoveItem(ctx context.Context, cmd RemoveItemCommand) (*MutationResult, error) {
	cart, err := s.loadOrCreate(ctx, cmd.ClientID)
	if err != nil {
		return nil, err
	}

	notice := cart.RemoveItem(cmd.ProductID)
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}

	event := domain.CartItemRemovedEvent{
		CartID:    cart.ID,
		ClientID:  cart.ClientID,
		ProductID: cmd.ProductID,
		Timestamp: time.Now(),
	}
	s.publisher.Publish(ctx, "cart.item.removed", cmd.ClientID, event)

	return &MutationResult{Notice: notice, Cart: toCartDTO(cart)}, nil
}

// UpdateQuantity 处理行数量调整
func (s *CartCommandService) UpdateQuantity(ctx context.Context, cmd UpdateQuantityCommand) (*MutationResult, error) {
	cart, err := s.loadOrCreate(ctx, cmd.ClientID)
	if err != nil {
		return nil, err
	}

	notice := cart.UpdateQuantity(cmd.ProductID, cmd.Direction)
	if !notice.Mutated() {
		if notice.Kind == domain.NoticeStockLimit {
			s.metrics.StockRejectionsTotal.Inc()
		}
		return &MutationResult{Notice: notice, Cart: toCartDTO(cart)}, nil
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}

	return &MutationResult{Notice: notice, Cart: toCartDTO(cart)}, nil
}

// ClearCart 处理清空购物车
func (s *CartCommandService) ClearCart(ctx context.Context, cmd ClearCartCommand) error {
	cart, err := s.repo.GetByClientID(ctx, cmd.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := s.repo.Delete(ctx, cmd.ClientID); err != nil {
		return err
	}

	if cart.ID != 0 {
		event := domain.CartClearedEvent{
			CartID:    cart.ID,
			ClientID:  cart.ClientID,
			Timestamp: time.Now(),
		}
		s.publisher.Publish(ctx, "cart.cleared", cmd.ClientID, event)
	}

	return nil
}
