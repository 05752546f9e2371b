package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wyfcoding/storefront/internal/payment/domain"
	"github.com/wyfcoding/storefront/internal/platform/bankgw"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// webhookDedupTTL 回调去重键的保留时长
const webhookDedupTTL = 24 * time.Hour

var (
	// ErrInvalidSignature 回调签名校验失败
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	// ErrMalformedCallback 回调体无法解析或缺少订单号
	ErrMalformedCallback = errors.New("payment: malformed webhook callback")
)

// IdempotencyStore 回调幂等去重存储
type IdempotencyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// WebhookOutcome 回调处理结果
type WebhookOutcome string

const (
	// OutcomeConfirmed 支付成功，订单已推进
	OutcomeConfirmed WebhookOutcome = "confirmed"
	// OutcomeFailed 网关回报非成功状态
	OutcomeFailed WebhookOutcome = "failed"
	// OutcomeDuplicate 重复回调，已处理过
	OutcomeDuplicate WebhookOutcome = "duplicate"
)

// WebhookService 支付回调处理服务
type WebhookService struct {
	orders    BackendOrders
	gateway   Gateway
	dedup     IdempotencyStore
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewWebhookService 创建回调处理服务
func NewWebhookService(
	orders BackendOrders,
	gateway Gateway,
	dedup IdempotencyStore,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *WebhookService {
	return &WebhookService{orders: orders, gateway: gateway, dedup: dedup, publisher: publisher, metrics: m}
}

// Handle 处理一次网关回调。
// 签名校验 → 解析 → 幂等去重 → 成功时推进订单为 processing。
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature string) (WebhookOutcome, error) {
	if !s.gateway.VerifySignature(body, signature) {
		s.metrics.WebhookCallbacksTotal.WithLabelValues("invalid_signature").Inc()
		return "", ErrInvalidSignature
	}

	var callback bankgw.Callback
	if err := json.Unmarshal(body, &callback); err != nil {
		s.metrics.WebhookCallbacksTotal.WithLabelValues("malformed").Inc()
		return "", ErrMalformedCallback
	}

	orderID, err := orderIDFromExternal(callback.OrderNumber)
	if err != nil {
		s.metrics.WebhookCallbacksTotal.WithLabelValues("malformed").Inc()
		return "", ErrMalformedCallback
	}

	dedupKey := "payment:webhook:" + callback.OrderNumber + ":" + callback.Status
	claimed := false
	fresh, err := s.dedup.SetNX(ctx, dedupKey, time.Now().Unix(), webhookDedupTTL)
	if err != nil {
		// 去重存储不可用时宁可重复处理，订单更新本身是幂等的
		logger.Warn(ctx, "Webhook dedup store unavailable", "key", dedupKey, "error", err)
	} else if !fresh {
		s.metrics.WebhookCallbacksTotal.WithLabelValues("duplicate").Inc()
		return OutcomeDuplicate, nil
	} else {
		claimed = true
	}

	if !callback.IsSuccess() {
		logger.Info(ctx, "Payment callback reported non-success status",
			"order_id", orderID, "status", callback.Status)
		s.metrics.WebhookCallbacksTotal.WithLabelValues("failed").Inc()

		if err := s.publisher.Publish(ctx, "payment.failed", callback.OrderNumber, domain.PaymentFailedEvent{
			OrderID:    orderID,
			ExternalID: callback.OrderNumber,
			Status:     callback.Status,
			FailedAt:   time.Now().Unix(),
		}); err != nil {
			logger.Error(ctx, "Failed to publish payment failed event", "order_id", orderID, "error", err)
		}
		return OutcomeFailed, nil
	}

	if _, err := s.orders.UpdateOrder(ctx, orderID, &woocommerce.OrderUpdate{
		Status:        "processing",
		TransactionID: callback.TransactionID,
		SetPaid:       true,
	}); err != nil {
		// 订单未推进，释放去重键让网关重试的同一回调能重新处理
		if claimed {
			if delErr := s.dedup.Delete(ctx, dedupKey); delErr != nil {
				logger.Error(ctx, "Failed to release webhook dedup key",
					"key", dedupKey, "error", delErr)
			}
		}
		s.metrics.WebhookCallbacksTotal.WithLabelValues("update_failed").Inc()
		return "", err
	}

	s.metrics.WebhookCallbacksTotal.WithLabelValues("confirmed").Inc()

	if err := s.publisher.Publish(ctx, "payment.confirmed", callback.OrderNumber, domain.PaymentConfirmedEvent{
		OrderID:       orderID,
		ExternalID:    callback.OrderNumber,
		TransactionID: callback.TransactionID,
		Amount:        callback.Amount,
		ConfirmedAt:   time.Now().Unix(),
	}); err != nil {
		logger.Error(ctx, "Failed to publish payment confirmed event", "order_id", orderID, "error", err)
	}

	return OutcomeConfirmed, nil
}

// orderIDFromExternal 从外部订单号（<订单ID>-<时间戳>）还原后端订单 ID
func orderIDFromExternal(externalID string) (int64, error) {
	prefix, _, _ := strings.Cut(externalID, "-")
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformedCallback
	}
	return id, nil
}
