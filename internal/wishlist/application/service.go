// Package application 心愿单用例逻辑
package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/storefront/internal/wishlist/domain"
	"gorm.io/gorm"
)

// ToggleItemCommand toggle 命令
type ToggleItemCommand struct {
	ClientID      string
	ProductID     int64
	Name          string
	Price         string
	SalePrice     string
	RegularPrice  string
	Image         string
	Slug          string
	Attributes    map[string]string
	StockQuantity int
	StockStatus   string
	Categories    []string
}

// WishlistItemDTO 心愿单条目 DTO
type WishlistItemDTO struct {
	ProductID     int64             `json:"id"`
	Name          string            `json:"name"`
	Price         string            `json:"price"`
	SalePrice     string            `json:"sale_price,omitempty"`
	RegularPrice  string            `json:"regular_price,omitempty"`
	Image         string            `json:"image"`
	Slug          string            `json:"slug"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	StockQuantity int               `json:"stock_quantity,omitempty"`
	StockStatus   string            `json:"stock_status,omitempty"`
	Categories    []string          `json:"categories,omitempty"`
}

// WishlistDTO 心愿单 DTO
type WishlistDTO struct {
	Items    []WishlistItemDTO `json:"items"`
	Hydrated bool              `json:"hydrated"`
}

// ToggleResult toggle 结果：动作 + 最新快照
type ToggleResult struct {
	Outcome  domain.ToggleOutcome `json:"outcome"`
	Message  string               `json:"message"`
	Wishlist *WishlistDTO         `json:"wishlist"`
}

// WishlistApplicationService 心愿单应用服务
type WishlistApplicationService struct {
	repo domain.WishlistRepository
}

// NewWishlistApplicationService 创建心愿单应用服务
func NewWishlistApplicationService(repo domain.WishlistRepository) *WishlistApplicationService {
	return &WishlistApplicationService{repo: repo}
}

// GetWishlist 获取心愿单快照；不存在时返回已水合的空单
func (s *WishlistApplicationService) GetWishlist(ctx context.Context, clientID string) (*WishlistDTO, error) {
	wishlist, err := s.repo.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &WishlistDTO{Items: []WishlistItemDTO{}, Hydrated: true}, nil
		}
		return nil, err
	}
	return toWishlistDTO(wishlist), nil
}

// Contains 商品是否已在心愿单中
func (s *WishlistApplicationService) Contains(ctx context.Context, clientID string, productID int64) (bool, error) {
	wishlist, err := s.repo.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return wishlist.Contains(productID), nil
}

// ToggleItem 翻转商品的心愿单成员关系
func (s *WishlistApplicationService) ToggleItem(ctx context.Context, cmd ToggleItemCommand) (*ToggleResult, error) {
	wishlist, err := s.repo.GetByClientID(ctx, cmd.ClientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if wishlist == nil || wishlist.ID == 0 {
		wishlist = &domain.Wishlist{ClientID: cmd.ClientID, SchemaVersion: domain.CurrentSchemaVersion}
		if err := s.repo.Save(ctx, wishlist); err != nil {
			return nil, err
		}
	}

	outcome := wishlist.Toggle(domain.WishlistItem{
		ProductID:     cmd.ProductID,
		Name:          cmd.Name,
		Price:         cmd.Price,
		SalePrice:     cmd.SalePrice,
		RegularPrice:  cmd.RegularPrice,
		Image:         cmd.Image,
		Slug:          cmd.Slug,
		Attributes:    cmd.Attributes,
		StockQuantity: cmd.StockQuantity,
		StockStatus:   cmd.StockStatus,
		Categories:    cmd.Categories,
	})

	if err := s.repo.Save(ctx, wishlist); err != nil {
		return nil, err
	}

	message := cmd.Name + " added to wishlist"
	if outcome == domain.ToggleRemoved {
		message = cmd.Name + " removed from wishlist"
	}

	return &ToggleResult{
		Outcome:  outcome,
		Message:  message,
		Wishlist: toWishlistDTO(wishlist),
	}, nil
}

// toWishlistDTO 聚合转 DTO
func toWishlistDTO(wishlist *domain.Wishlist) *WishlistDTO {
	dto := &WishlistDTO{
		Items:    make([]WishlistItemDTO, 0, len(wishlist.Items)),
		Hydrated: true,
	}
	for i := range wishlist.Items {
		item := &wishlist.Items[i]
		dto.Items = append(dto.Items, WishlistItemDTO{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Price:         item.Price,
			SalePrice:     item.SalePrice,
			RegularPrice:  item.RegularPrice,
			Image:         item.Image,
			Slug:          item.Slug,
			Attributes:    item.Attributes,
			StockQuantity: item.StockQuantity,
			StockStatus:   item.StockStatus,
			Categories:    item.Categories,
		})
	}
	return dto
}
