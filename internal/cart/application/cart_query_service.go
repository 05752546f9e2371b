package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"gorm.io/gorm"
)

// CartItemDTO 购物车行 DTO
type CartItemDTO struct {
	ProductID       int64             `json:"id"`
	Name            string            `json:"name"`
	Price           string            `json:"price"`
	Image           string            `json:"image"`
	Quantity        int               `json:"quantity"`
	Slug            string            `json:"slug"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
	SKU             string            `json:"sku,omitempty"`
	StockQuantity   int               `json:"stock_quantity,omitempty"`
}

// CartDTO 购物车 DTO。
// Hydrated 标记持久化内容已加载完成，区分"尚未加载"与"确实为空"
type CartDTO struct {
	Items      []CartItemDTO `json:"items"`
	ItemCount  int           `json:"item_count"`
	TotalPrice string        `json:"total_price"`
	Hydrated   bool          `json:"hydrated"`
}

// toCartDTO 聚合转 DTO
func toCartDTO(cart *domain.Cart) *CartDTO {
	dto := &CartDTO{
		Items:      make([]CartItemDTO, 0, len(cart.Items)),
		ItemCount:  cart.ItemCount(),
		TotalPrice: cart.TotalPrice().String(),
		Hydrated:   true,
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		dto.Items = append(dto.Items, CartItemDTO{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Price:           item.Price,
			Image:           item.Image,
			Quantity:        item.Quantity,
			Slug:            item.Slug,
			SelectedOptions: item.SelectedOptions,
			SKU:             item.SKU,
			StockQuantity:   item.StockQuantity,
		})
	}
	return dto
}

// CartQueryService 购物车查询服务
type CartQueryService struct {
	repo domain.CartRepository
}

// NewCartQueryService 创建购物车查询服务实例
func NewCartQueryService(repo domain.CartRepository) *CartQueryService {
	return &CartQueryService{repo: repo}
}

// GetCart 获取购物车快照；不存在时返回已水合的空车
func (s *CartQueryService) GetCart(ctx context.Context, clientID string) (*CartDTO, error) {
	cart, err := s.repo.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartDTO{Items: []CartItemDTO{}, TotalPrice: "0", Hydrated: true}, nil
		}
		return nil, err
	}

	domain.MigrateSchema(cart)
	return toCartDTO(cart), nil
}
