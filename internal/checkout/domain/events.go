package domain

import "context"

// OrderCreatedEvent 后端订单创建成功事件
type OrderCreatedEvent struct {
	ClientID      string `json:"client_id"`
	OrderID       int64  `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	PaymentMethod string `json:"payment_method"`
	Total         string `json:"total"`
	CreatedAt     int64  `json:"created_at"`
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
