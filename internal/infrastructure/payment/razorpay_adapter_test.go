package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/backend/internal/domain/payment"
	"github.com/vendora/backend/internal/domain/returns"
	"github.com/vendora/backend/internal/domain/shared"
)

func testAdapter(t *testing.T, baseURL string) *RazorpayAdapter {
	t.Helper()
	adapter, err := NewRazorpayAdapter(&RazorpayConfig{
		BaseURL:   baseURL,
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)
	return adapter
}

func TestCreateRefund(t *testing.T) {
	t.Run("issues refund in minor units", func(t *testing.T) {
		var captured razorpayRefundRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payments/pay_abc123/refund", r.URL.Path)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)
			assert.Equal(t, "secret", pass)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(razorpayRefundResponse{
				ID: "rfnd_001", Amount: 149900, Currency: "INR",
				PaymentID: "pay_abc123", Status: "pending",
			})
		}))
		defer server.Close()

		adapter := testAdapter(t, server.URL)

		result, err := adapter.CreateRefund(context.Background(), &payment.RefundRequest{
			PaymentID: "pay_abc123",
			Amount:    decimal.NewFromInt(1499),
			Receipt:   "req-42",
			Notes:     map[string]string{"return_request_id": "req-42"},
		})

		require.NoError(t, err)
		assert.Equal(t, "rfnd_001", result.RefundID)
		assert.Equal(t, returns.RefundStatusInitiated, result.Status)
		assert.True(t, result.Amount.Equal(decimal.NewFromInt(1499)))
		assert.Equal(t, int64(149900), captured.Amount)
		assert.Equal(t, "req-42", captured.Receipt)
	})

	t.Run("maps processed to succeeded", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(razorpayRefundResponse{ID: "rfnd_002", Amount: 100, Status: "processed"})
		}))
		defer server.Close()

		result, err := testAdapter(t, server.URL).CreateRefund(context.Background(), &payment.RefundRequest{
			PaymentID: "pay_x", Amount: decimal.NewFromInt(1),
		})

		require.NoError(t, err)
		assert.Equal(t, returns.RefundStatusSucceeded, result.Status)
	})

	t.Run("business rejection is permanent with processor code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The payment has been fully refunded already"}}`))
		}))
		defer server.Close()

		_, err := testAdapter(t, server.URL).CreateRefund(context.Background(), &payment.RefundRequest{
			PaymentID: "pay_x", Amount: decimal.NewFromInt(1),
		})

		require.Error(t, err)
		var extErr *shared.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.False(t, extErr.Transient)
		assert.Equal(t, "BAD_REQUEST_ERROR", extErr.Code)
	})

	t.Run("5xx is transient", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := testAdapter(t, server.URL).CreateRefund(context.Background(), &payment.RefundRequest{
			PaymentID: "pay_x", Amount: decimal.NewFromInt(1),
		})

		require.Error(t, err)
		var extErr *shared.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.True(t, extErr.Transient)
	})

	t.Run("rejects non positive amount", func(t *testing.T) {
		_, err := testAdapter(t, "http://localhost:0").CreateRefund(context.Background(), &payment.RefundRequest{
			PaymentID: "pay_x", Amount: decimal.Zero,
		})
		assert.Error(t, err)
	})
}

func TestRazorpayConfigValidate(t *testing.T) {
	t.Run("defaults base URL and timeout", func(t *testing.T) {
		cfg := &RazorpayConfig{KeyID: "k", KeySecret: "s"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://api.razorpay.com/v1", cfg.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})

	t.Run("requires credentials", func(t *testing.T) {
		cfg := &RazorpayConfig{}
		assert.Error(t, cfg.Validate())
	})
}
