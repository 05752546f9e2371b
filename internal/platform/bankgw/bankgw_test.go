package bankgw

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

var testMetrics = metrics.New("bankgw_test")

func TestCallbackIsSuccess(t *testing.T) {
	for _, status := range []string{"PAID", "SUCCESS", "DEPOSITED", "2"} {
		assert.True(t, (&Callback{Status: status}).IsSuccess(), status)
	}
	for _, status := range []string{"DECLINED", "PENDING", "", "0"} {
		assert.False(t, (&Callback{Status: status}).IsSuccess(), status)
	}
}

func TestRawOrderResponseRedirectURL(t *testing.T) {
	r := rawOrderResponse{FormURL: "https://a", RedirectRaw: "https://b"}
	assert.Equal(t, "https://a", r.redirectURL())

	r = rawOrderResponse{RedirectRaw: "https://b"}
	assert.Equal(t, "https://b", r.redirectURL())

	r = rawOrderResponse{}
	r.Checkout.RedirectURL = "https://c"
	assert.Equal(t, "https://c", r.redirectURL())
}

func TestRawOrderResponseTransactionID(t *testing.T) {
	r := rawOrderResponse{OrderID: "o1", PaymentID: "p1"}
	assert.Equal(t, "o1", r.transactionID())

	r = rawOrderResponse{PaymentID: "p1"}
	assert.Equal(t, "p1", r.transactionID())
}

func TestVerifySignature(t *testing.T) {
	client := New(Config{WebhookSecret: "secret"}, testMetrics)
	body := []byte(`{"orderNumber":"1-2"}`)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifySignature(body, signature))
	assert.False(t, client.VerifySignature(body, "deadbeef"))
	assert.False(t, client.VerifySignature(body, ""))
}

func TestVerifySignatureSkippedWithoutSecret(t *testing.T) {
	client := New(Config{}, testMetrics)
	assert.True(t, client.VerifySignature([]byte("anything"), ""))
}

func TestTokenExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "id", r.FormValue("client_id"))

		json.NewEncoder(w).Encode(map[string]any{"access_token": "abc", "expires_in": 3600})
	}))
	defer server.Close()

	client := New(Config{TokenURL: server.URL, ClientID: "id", ClientSecret: "s", Timeout: 5}, testMetrics)

	token, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestCreateOrderNoRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"orderId": "o1"})
	}))
	defer server.Close()

	client := New(Config{OrderURL: server.URL, Timeout: 5}, testMetrics)

	_, err := client.CreateOrder(context.Background(), "token", &OrderRequest{ExternalID: "1-2", Amount: "10"})
	assert.ErrorIs(t, err, ErrNoRedirectURL)
}

func TestCreateOrderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var req OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1-2", req.ExternalID)

		json.NewEncoder(w).Encode(map[string]any{"orderId": "o1", "formUrl": "https://pay"})
	}))
	defer server.Close()

	client := New(Config{OrderURL: server.URL, Timeout: 5}, testMetrics)

	resp, err := client.CreateOrder(context.Background(), "token", &OrderRequest{ExternalID: "1-2", Amount: "10"})
	require.NoError(t, err)
	assert.Equal(t, "o1", resp.TransactionID)
	assert.Equal(t, "https://pay", resp.RedirectURL)
}
