package domain

import "time"

// CartCreatedEvent 购物车创建事件
type CartCreatedEvent struct {
	CartID    uint      `json:"cart_id"`
	ClientID  string    `json:"client_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CartItemAddedEvent 购物车添加商品事件
type CartItemAddedEvent struct {
	CartID    uint      `json:"cart_id"`
	ClientID  string    `json:"client_id"`
	ProductID int64     `json:"product_id"`
	SKU       string    `json:"sku,omitempty"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// CartItemRemovedEvent 购物车移除商品事件
type CartItemRemovedEvent struct {
	CartID    uint      `json:"cart_id"`
	ClientID  string    `json:"client_id"`
	ProductID int64     `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CartClearedEvent 购物车清空事件
type CartClearedEvent struct {
	CartID    uint      `json:"cart_id"`
	ClientID  string    `json:"client_id"`
	Timestamp time.Time `json:"timestamp"`
}

// StockRejectionEvent 库存上限拒绝事件
type StockRejectionEvent struct {
	CartID    uint      `json:"cart_id"`
	ClientID  string    `json:"client_id"`
	ProductID int64     `json:"product_id"`
	SKU       string    `json:"sku,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
