package mysql

import (
	"context"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"gorm.io/gorm"
)

type cartRepository struct{ db *gorm.DB }

// NewCartRepository 创建 MySQL 购物车仓储
func NewCartRepository(db *gorm.DB) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetByClientID(ctx context.Context, clientID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).Preload("Items").Where("client_id = ?", clientID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save 保存聚合：行以聚合内容为准，已删除的行同步清理
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(cart).Error; err != nil {
			return err
		}

		kept := make([]uint, 0, len(cart.Items))
		for i := range cart.Items {
			kept = append(kept, cart.Items[i].ID)
		}

		query := tx.Where("cart_id = ?", cart.ID)
		if len(kept) > 0 {
			query = query.Where("id NOT IN ?", kept)
		}
		return query.Delete(&domain.CartItem{}).Error
	})
}

func (r *cartRepository) Delete(ctx context.Context, clientID string) error {
	var cart domain.Cart
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&cart).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.CartItem{}, "cart_id = ?", cart.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
}
