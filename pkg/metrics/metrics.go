// Package metrics 提供 Prometheus helper，包含 HTTP、上游调用与业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 上游（WooCommerce / 支付网关）调用计数
	UpstreamRequestsTotal *prometheus.CounterVec
	// 上游调用耗时
	UpstreamRequestDuration *prometheus.HistogramVec

	// 业务指标
	OrdersCreatedTotal     prometheus.Counter
	CheckoutQuotesTotal    *prometheus.CounterVec
	StockRejectionsTotal   prometheus.Counter
	WebhookCallbacksTotal  *prometheus.CounterVec
	PaymentRedirectsTotal  prometheus.Counter
	StalePendingOrders     prometheus.Gauge
	CacheInvalidationTotal prometheus.Counter
}

// New 创建指标实例并注册
func New(serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		UpstreamRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "upstream_requests_total",
			Help:      "Total upstream (WooCommerce/gateway) requests",
		}, []string{"upstream", "operation", "status"}),
		UpstreamRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream", "operation"}),
		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "orders_created_total",
			Help:      "Total backend orders created",
		}),
		CheckoutQuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "checkout_quotes_total",
			Help:      "Total checkout quotes computed, by result kind",
		}, []string{"kind"}),
		StockRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "stock_rejections_total",
			Help:      "Total cart mutations rejected by stock cap",
		}),
		WebhookCallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "webhook_callbacks_total",
			Help:      "Total payment webhook callbacks, by outcome",
		}, []string{"outcome"}),
		PaymentRedirectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "payment_redirects_total",
			Help:      "Total successful bank redirect URLs issued",
		}),
		StalePendingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "stale_pending_orders",
			Help:      "Pending orders older than the reconcile threshold",
		}),
		CacheInvalidationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "cache_invalidations_total",
			Help:      "Total catalog/content cache invalidations",
		}),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UpstreamRequestsTotal,
		m.UpstreamRequestDuration,
		m.OrdersCreatedTotal,
		m.CheckoutQuotesTotal,
		m.StockRejectionsTotal,
		m.WebhookCallbacksTotal,
		m.PaymentRedirectsTotal,
		m.StalePendingOrders,
		m.CacheInvalidationTotal,
	)

	return m
}

// ObserveUpstream 记录一次上游调用
func (m *Metrics) ObserveUpstream(upstream, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.UpstreamRequestsTotal.WithLabelValues(upstream, operation, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(upstream, operation).Observe(time.Since(start).Seconds())
}

// Serve 启动独立的指标 HTTP 服务
func Serve(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Metrics server starting", "addr", addr, "path", path)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error(context.Background(), "Metrics server exited", "error", err)
	}
}
