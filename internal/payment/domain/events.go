// Package domain 支付领域事件
package domain

import "context"

// PaymentInitiatedEvent 支付发起事件：已拿到网关跳转地址
type PaymentInitiatedEvent struct {
	ClientID      string `json:"client_id"`
	OrderID       int64  `json:"order_id"`
	ExternalID    string `json:"external_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	InitiatedAt   int64  `json:"initiated_at"`
}

// PaymentConfirmedEvent 支付确认事件：webhook 回调成功
type PaymentConfirmedEvent struct {
	OrderID       int64  `json:"order_id"`
	ExternalID    string `json:"external_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	ConfirmedAt   int64  `json:"confirmed_at"`
}

// PaymentFailedEvent 支付失败事件：webhook 回调非成功状态
type PaymentFailedEvent struct {
	OrderID    int64  `json:"order_id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	FailedAt   int64  `json:"failed_at"`
}

// StalePendingOrderEvent 滞留 pending 订单事件，由对账任务发出
type StalePendingOrderEvent struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Total       string `json:"total"`
	DateCreated string `json:"date_created"`
	DetectedAt  int64  `json:"detected_at"`
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
