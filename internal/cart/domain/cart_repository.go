package domain

import "context"

// CartRepository 购物车仓储接口
type CartRepository interface {
	GetByClientID(ctx context.Context, clientID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, clientID string) error
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
