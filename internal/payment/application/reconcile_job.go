package application

import (
	"context"
	"time"

	"github.com/wyfcoding/storefront/internal/payment/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// reconcileBatchSize 单次扫描的订单上限
const reconcileBatchSize = 100

// ReconcileJob 滞留订单对账任务。
// 周期扫描超过阈值仍为 pending 的订单，发事件并更新指标。
// 只报告不取消：支付结果以网关回调为准，自动取消可能吞掉在途支付。
type ReconcileJob struct {
	orders     BackendOrders
	publisher  domain.EventPublisher
	metrics    *metrics.Metrics
	interval   time.Duration
	staleAfter time.Duration
}

// NewReconcileJob 创建对账任务
func NewReconcileJob(
	orders BackendOrders,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	interval, staleAfter time.Duration,
) *ReconcileJob {
	return &ReconcileJob{orders: orders, publisher: publisher, metrics: m, interval: interval, staleAfter: staleAfter}
}

// Start 启动对账循环，ctx 取消时退出
func (j *ReconcileJob) Start(ctx context.Context) {
	logger.Info(ctx, "Reconcile job starting", "interval", j.interval, "stale_after", j.staleAfter)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Reconcile job stopped")
			return
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil {
				logger.Error(ctx, "Reconcile scan failed", "error", err)
			}
		}
	}
}

// RunOnce 执行一次滞留订单扫描
func (j *ReconcileJob) RunOnce(ctx context.Context) error {
	createdBefore := time.Now().Add(-j.staleAfter)

	orders, err := j.orders.ListOrders(ctx, "pending", createdBefore, reconcileBatchSize)
	if err != nil {
		return err
	}

	j.metrics.StalePendingOrders.Set(float64(len(orders)))
	if len(orders) == 0 {
		return nil
	}

	logger.Warn(ctx, "Stale pending orders detected", "count", len(orders))

	for i := range orders {
		order := &orders[i]
		if err := j.publisher.Publish(ctx, "payment.order.stale", order.Number, domain.StalePendingOrderEvent{
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Total:       order.Total,
			DateCreated: order.DateCreated,
			DetectedAt:  time.Now().Unix(),
		}); err != nil {
			logger.Error(ctx, "Failed to publish stale order event", "order_id", order.ID, "error", err)
		}
	}
	return nil
}
