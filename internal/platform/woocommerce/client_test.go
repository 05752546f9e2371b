package woocommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

var testMetrics = metrics.New("woocommerce_test")

func TestAPIErrorPrefersBackendMessage(t *testing.T) {
	err := &APIError{StatusCode: 400, Body: []byte(`{"message":"Coupon expired"}`)}
	assert.Equal(t, "Coupon expired", err.Error())

	err = &APIError{StatusCode: 502, Body: []byte("bad gateway")}
	assert.Equal(t, "woocommerce: unexpected status 502", err.Error())
}

func TestGetProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "/products/7", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"id": 7, "name": "Tote", "price": "50", "stock_quantity": 3,
		})
	}))
	defer server.Close()

	client := New(Config{
		RESTBaseURL: server.URL, ConsumerKey: "key", ConsumerSecret: "secret", Timeout: 5,
	}, testMetrics)

	product, err := client.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
	assert.Equal(t, "50", product.Price)
	assert.Equal(t, 3, product.StockQuantity)
}

func TestGqlThreadsSessionToken(t *testing.T) {
	var receivedHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeader = r.Header.Get(SessionHeader)
		w.Header().Set(SessionHeader, "Session refreshed-token")
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer server.Close()

	client := New(Config{GraphQLURL: server.URL, Timeout: 5}, testMetrics)

	newToken, err := client.AddToCart(context.Background(), "old-token", 1, 0, 1)
	require.NoError(t, err)

	// 请求带旧令牌，响应头里的新令牌返回给调用方
	assert.Equal(t, "Session old-token", receivedHeader)
	assert.Equal(t, "refreshed-token", newToken)
}

func TestGqlSurfacesFirstErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{
				{"message": "Coupon does not exist"},
				{"message": "second error"},
			},
		})
	}))
	defer server.Close()

	client := New(Config{GraphQLURL: server.URL, Timeout: 5}, testMetrics)

	_, err := client.ApplyCoupon(context.Background(), "", "nope")
	require.Error(t, err)
	assert.Equal(t, "Coupon does not exist", err.Error())
}

func TestGqlKeepsTokenWhenNotRefreshed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer server.Close()

	client := New(Config{GraphQLURL: server.URL, Timeout: 5}, testMetrics)

	newToken, err := client.AddToCart(context.Background(), "stable-token", 1, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "stable-token", newToken)
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		var req OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pending", req.Status)

		json.NewEncoder(w).Encode(map[string]any{"id": 101, "number": "101", "status": "pending"})
	}))
	defer server.Close()

	client := New(Config{RESTBaseURL: server.URL, Timeout: 5}, testMetrics)

	order, err := client.CreateOrder(context.Background(), &OrderRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(101), order.ID)
}

func TestListOrdersQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		json.NewEncoder(w).Encode([]map[string]any{{"id": 1}, {"id": 2}})
	}))
	defer server.Close()

	client := New(Config{RESTBaseURL: server.URL, Timeout: 5}, testMetrics)

	orders, err := client.ListOrders(context.Background(), "pending", time.Time{}, 50)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
