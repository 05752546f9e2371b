// Package bankgw 封装银行支付网关：OAuth client-credentials 换取令牌、创建支付订单、回调签名校验
package bankgw

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// ErrNoRedirectURL 网关响应中没有可用的跳转地址
var ErrNoRedirectURL = errors.New("bankgw: no redirect url in gateway response")

// Config 网关配置
type Config struct {
	TokenURL      string
	OrderURL      string
	ClientID      string
	ClientSecret  string
	ReturnURL     string
	WebhookSecret string
	Timeout       int
	Currency      string
}

// Client 支付网关客户端
type Client struct {
	config  Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	metrics *metrics.Metrics
}

// New 创建网关客户端
func New(cfg Config, m *metrics.Metrics) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "bankgw",
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

// Token 以 client-credentials 授权换取 bearer token
func (c *Client) Token(ctx context.Context) (string, error) {
	start := time.Now()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, err := c.execute(req)
	c.metrics.ObserveUpstream("bankgw", "token", start, err)
	if err != nil {
		logger.Error(ctx, "Gateway token exchange failed", "error", err)
		return "", err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", errors.New("bankgw: empty access token")
	}
	return resp.AccessToken, nil
}

// CreateOrder 创建网关支付订单，返回跳转地址与交易标识
func (c *Client) CreateOrder(ctx context.Context, token string, order *OrderRequest) (*OrderResponse, error) {
	start := time.Now()

	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.OrderURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	data, err := c.execute(req)
	c.metrics.ObserveUpstream("bankgw", "create_order", start, err)
	if err != nil {
		logger.Error(ctx, "Gateway order creation failed", "external_id", order.ExternalID, "error", err)
		return nil, err
	}

	var raw rawOrderResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	resp := &OrderResponse{
		TransactionID: raw.transactionID(),
		RedirectURL:   raw.redirectURL(),
	}
	if resp.RedirectURL == "" {
		return nil, ErrNoRedirectURL
	}
	return resp, nil
}

// VerifySignature 校验回调体的 HMAC-SHA256 签名；未配置密钥时跳过校验
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if c.config.WebhookSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.config.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// ReturnURL 支付完成后的返回地址
func (c *Client) ReturnURL() string {
	return c.config.ReturnURL
}

// Currency 网关货币代码
func (c *Client) Currency() string {
	return c.config.Currency
}

// execute 经熔断器执行请求并读取响应体
func (c *Client) execute(req *http.Request) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
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
			return nil, fmt.Errorf("bankgw: unexpected status %d: %s", resp.StatusCode, string(payload))
		}
		return payload, nil
	})
}
