// Package woocommerce 封装 WooCommerce 后端的 REST 与 GraphQL 访问
package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// Config 客户端配置
type Config struct {
	RESTBaseURL    string
	GraphQLURL     string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        int
	MaxRetries     int
}

// Client WooCommerce 客户端（REST + GraphQL）
type Client struct {
	config  Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	metrics *metrics.Metrics
}

// New 创建客户端
func New(cfg Config, m *metrics.Metrics) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "woocommerce",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		config: cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		breaker: breaker,
		metrics: m,
	}
}

// GetProduct 按 ID 查询商品（权威价格与库存来源）
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var raw struct {
		ID            int64  `json:"id"`
		Name          string `json:"name"`
		Slug          string `json:"slug"`
		SKU           string `json:"sku"`
		Price         string `json:"price"`
		RegularPrice  string `json:"regular_price"`
		SalePrice     string `json:"sale_price"`
		StockQuantity *int   `json:"stock_quantity"`
		StockStatus   string `json:"stock_status"`
	}

	path := fmt.Sprintf("/products/%d", productID)
	if err := c.restGet(ctx, "get_product", path, nil, &raw); err != nil {
		return nil, err
	}

	product := &Product{
		ID:           raw.ID,
		Name:         raw.Name,
		Slug:         raw.Slug,
		SKU:          raw.SKU,
		Price:        raw.Price,
		RegularPrice: raw.RegularPrice,
		SalePrice:    raw.SalePrice,
		StockStatus:  raw.StockStatus,
	}
	if raw.StockQuantity != nil {
		product.StockQuantity = *raw.StockQuantity
	}
	return product, nil
}

// CreateOrder 创建订单
func (c *Client) CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	var order Order
	if err := c.restDo(ctx, "create_order", http.MethodPost, "/orders", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder 查询订单
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.restGet(ctx, "get_order", path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder 更新订单（状态、交易号、元数据）
func (c *Client) UpdateOrder(ctx context.Context, orderID int64, update *OrderUpdate) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.restDo(ctx, "update_order", http.MethodPut, path, nil, update, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders 按状态与创建时间查询订单
func (c *Client) ListOrders(ctx context.Context, status string, createdBefore time.Time, limit int) ([]Order, error) {
	query := url.Values{}
	query.Set("status", status)
	query.Set("per_page", strconv.Itoa(limit))
	if !createdBefore.IsZero() {
		query.Set("before", createdBefore.UTC().Format(time.RFC3339))
	}

	var orders []Order
	if err := c.restGet(ctx, "list_orders", "/orders", query, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// restGet 读路径：带重试的 GET
func (c *Client) restGet(ctx context.Context, operation, path string, query url.Values, out interface{}) error {
	return utils.RetryWithBackoff(c.config.MaxRetries+1, 200*time.Millisecond, 2*time.Second, func() error {
		return c.restDo(ctx, operation, http.MethodGet, path, query, nil, out)
	})
}

// restDo 执行一次 REST 调用（basic auth + 熔断）
func (c *Client) restDo(ctx context.Context, operation, method, path string, query url.Values, body, out interface{}) error {
	start := time.Now()

	endpoint := c.config.RESTBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.config.ConsumerKey, c.config.ConsumerSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: payload}
		}
		return payload, nil
	})
	c.metrics.ObserveUpstream("woocommerce", operation, start, err)
	if err != nil {
		logger.Error(ctx, "WooCommerce REST call failed",
			"operation", operation,
			"method", method,
			"path", path,
			"error", err,
		)
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// APIError 后端返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Body       []byte
}

// Error 实现 error 接口，优先取后端 message 字段
func (e *APIError) Error() string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return fmt.Sprintf("woocommerce: unexpected status %d", e.StatusCode)
}
