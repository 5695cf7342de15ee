package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain/payment"
	"github.com/vendora/backend/internal/domain/returns"
	"github.com/vendora/backend/internal/domain/shared"
)

// RazorpayConfig holds Razorpay API credentials
type RazorpayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Validate checks the configuration
func (c *RazorpayConfig) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.razorpay.com/v1"
	}
	if c.KeyID == "" || c.KeySecret == "" {
		return shared.NewDomainError("INVALID_CONFIG", "Razorpay key ID and secret are required")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

type razorpayRefundRequest struct {
	Amount  int64             `json:"amount"` // Minor currency units
	Receipt string            `json:"receipt,omitempty"`
	Notes   map[string]string `json:"notes,omitempty"`
}

type razorpayRefundResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"` // processed | pending | failed
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayAdapter implements payment.RefundGateway against the Razorpay API
type RazorpayAdapter struct {
	config     *RazorpayConfig
	httpClient *http.Client
}

// NewRazorpayAdapter creates a new Razorpay adapter
func NewRazorpayAdapter(config *RazorpayConfig) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &RazorpayAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// CreateRefund issues a refund against a captured payment. Amounts are sent
// in minor units; the receipt lets Razorpay de-duplicate repeated requests
// for the same refund.
func (a *RazorpayAdapter) CreateRefund(ctx context.Context, req *payment.RefundRequest) (*payment.RefundResult, error) {
	if req.PaymentID == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}

	body, err := json.Marshal(razorpayRefundRequest{
		Amount:  req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Receipt: req.Receipt,
		Notes:   req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to marshal request: %w", err)
	}

	refundURL := fmt.Sprintf("%s/payments/%s/refund", a.config.BaseURL, req.PaymentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, refundURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(a.config.KeyID, a.config.KeySecret)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, shared.NewTransientExternalError(shared.ExternalServicePayment, "payment processor unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.NewTransientExternalError(shared.ExternalServicePayment, "failed to read processor response", err)
	}

	if resp.StatusCode >= 500 {
		return nil, shared.NewTransientExternalError(shared.ExternalServicePayment,
			fmt.Sprintf("processor returned HTTP %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		var errResp razorpayErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Error.Code != "" {
			return nil, shared.NewPermanentExternalError(shared.ExternalServicePayment, errResp.Error.Code, errResp.Error.Description)
		}
		return nil, shared.NewPermanentExternalError(shared.ExternalServicePayment,
			fmt.Sprintf("HTTP_%d", resp.StatusCode), "Payment processor rejected the refund")
	}

	var refundResp razorpayRefundResponse
	if err := json.Unmarshal(respBody, &refundResp); err != nil {
		return nil, shared.NewPermanentExternalError(shared.ExternalServicePayment, "BAD_RESPONSE", "Processor returned an unparseable response")
	}

	return &payment.RefundResult{
		RefundID:    refundResp.ID,
		Status:      mapRazorpayRefundStatus(refundResp.Status),
		Amount:      decimal.NewFromInt(refundResp.Amount).Div(decimal.NewFromInt(100)),
		RawResponse: string(respBody),
	}, nil
}

func mapRazorpayRefundStatus(status string) string {
	switch status {
	case "processed":
		return returns.RefundStatusSucceeded
	case "failed":
		return returns.RefundStatusFailed
	default:
		return returns.RefundStatusInitiated
	}
}

// Ensure RazorpayAdapter implements RefundGateway interface
var _ payment.RefundGateway = (*RazorpayAdapter)(nil)
