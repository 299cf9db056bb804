package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.PaymentConfig{
		TossSecretKey: "test_sk_123",
		ConfirmURL:    url,
		Timeout:       2 * time.Second,
	})
}

func TestClient_Confirm(t *testing.T) {
	var got Confirmation
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("test_sk_123:")), r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"paymentKey":"pk_1","status":"DONE","totalAmount":15000}`))
	}))
	defer server.Close()

	data, err := newTestClient(server.URL).Confirm(context.Background(), Confirmation{
		PaymentKey: "pk_1",
		OrderID:    "order-1",
		Amount:     15000,
	})
	require.NoError(t, err)

	assert.Equal(t, Confirmation{PaymentKey: "pk_1", OrderID: "order-1", Amount: 15000}, got)
	assert.JSONEq(t, `{"paymentKey":"pk_1","status":"DONE","totalAmount":15000}`, string(data))
}

func TestClient_ConfirmRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"REJECT_CARD_COMPANY","message":"카드사에서 거절했습니다."}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Confirm(context.Background(), Confirmation{PaymentKey: "pk", OrderID: "o", Amount: 1})

	var upErr *apperr.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusBadRequest, upErr.Status)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.True(t, gwErr.Rejected())
	assert.Equal(t, "REJECT_CARD_COMPANY", gwErr.Code)
}

func TestClient_BreakerIgnoresRejectionsButTripsOnFailures(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusBadRequest)
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"code":"X","message":"y"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx := context.Background()
	p := Confirmation{PaymentKey: "pk", OrderID: "o", Amount: 1}

	for i := 0; i < 6; i++ {
		_, err := client.Confirm(ctx, p)
		require.Error(t, err)
	}
	assert.Equal(t, int32(6), hits.Load(), "rejections keep the breaker closed")

	status.Store(http.StatusInternalServerError)
	for i := 0; i < 5; i++ {
		_, _ = client.Confirm(ctx, p)
	}

	_, err := client.Confirm(ctx, p)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(11), hits.Load())

	var upErr *apperr.UpstreamError
	assert.ErrorAs(t, err, &upErr)
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(config.PaymentConfig{ConfirmURL: "http://127.0.0.1:1"})
	_, err := client.Confirm(context.Background(), Confirmation{PaymentKey: "pk", OrderID: "o", Amount: 1})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
