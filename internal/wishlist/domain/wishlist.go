// Package domain 心愿单领域模型：按商品 ID 的集合语义，toggle 增删
package domain

import (
	"context"

	"gorm.io/gorm"
)

// CurrentSchemaVersion 心愿单持久化结构的当前版本
const CurrentSchemaVersion = 1

// Wishlist 心愿单聚合，按客户端令牌隔离
type Wishlist struct {
	gorm.Model
	ClientID      string         `gorm:"column:client_id;type:varchar(36);uniqueIndex;not null"`
	SchemaVersion int            `gorm:"column:schema_version;not null;default:1"`
	Items         []WishlistItem `gorm:"foreignKey:WishlistID"`
}

func (Wishlist) TableName() string { return "wishlists" }

// WishlistItem 心愿单条目，无数量概念
type WishlistItem struct {
	gorm.Model
	WishlistID    uint              `gorm:"column:wishlist_id;index;not null"`
	ProductID     int64             `gorm:"column:product_id;not null"`
	Name          string            `gorm:"column:name;type:varchar(255);not null"`
	Price         string            `gorm:"column:price;type:varchar(32)"`
	SalePrice     string            `gorm:"column:sale_price;type:varchar(32)"`
	RegularPrice  string            `gorm:"column:regular_price;type:varchar(32)"`
	Image         string            `gorm:"column:image;type:varchar(512)"`
	Slug          string            `gorm:"column:slug;type:varchar(255)"`
	Attributes    map[string]string `gorm:"column:attributes;serializer:json"`
	StockQuantity int               `gorm:"column:stock_quantity;not null;default:0"`
	StockStatus   string            `gorm:"column:stock_status;type:varchar(32)"`
	Categories    []string          `gorm:"column:categories;serializer:json"`
}

func (WishlistItem) TableName() string { return "wishlist_items" }

// ToggleOutcome toggle 的结果
type ToggleOutcome string

const (
	ToggleAdded   ToggleOutcome = "added"
	ToggleRemoved ToggleOutcome = "removed"
)

// Contains 商品是否已在心愿单中
func (w *Wishlist) Contains(productID int64) bool {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			return true
		}
	}
	return false
}

// Toggle 集合翻转：已在则移除，不在则加入
func (w *Wishlist) Toggle(item WishlistItem) ToggleOutcome {
	for i := range w.Items {
		if w.Items[i].ProductID == item.ProductID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			return ToggleRemoved
		}
	}
	w.Items = append(w.Items, item)
	return ToggleAdded
}

// WishlistRepository 心愿单仓储接口
type WishlistRepository interface {
	GetByClientID(ctx context.Context, clientID string) (*Wishlist, error)
	Save(ctx context.Context, wishlist *Wishlist) error
	Delete(ctx context.Context, clientID string) error
}
