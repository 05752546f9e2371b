package mysql

import (
	"context"

	"github.com/wyfcoding/storefront/internal/wishlist/domain"
	"gorm.io/gorm"
)

type wishlistRepository struct{ db *gorm.DB }

// NewWishlistRepository 创建 MySQL 心愿单仓储
func NewWishlistRepository(db *gorm.DB) domain.WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) GetByClientID(ctx context.Context, clientID string) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	err := r.db.WithContext(ctx).Preload("Items").Where("client_id = ?", clientID).First(&wishlist).Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// Save 保存聚合：条目以聚合内容为准，toggle 移除的条目同步清理
func (r *wishlistRepository) Save(ctx context.Context, wishlist *domain.Wishlist) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(wishlist).Error; err != nil {
			return err
		}

		kept := make([]uint, 0, len(wishlist.Items))
		for i := range wishlist.Items {
			kept = append(kept, wishlist.Items[i].ID)
		}

		query := tx.Where("wishlist_id = ?", wishlist.ID)
		if len(kept) > 0 {
			query = query.Where("id NOT IN ?", kept)
		}
		return query.Delete(&domain.WishlistItem{}).Error
	})
}

func (r *wishlistRepository) Delete(ctx context.Context, clientID string) error {
	var wishlist domain.Wishlist
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&wishlist).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.WishlistItem{}, "wishlist_id = ?", wishlist.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&wishlist).Error
	})
}
