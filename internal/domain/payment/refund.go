package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// RefundRequest describes a refund to be issued against a captured payment
type RefundRequest struct {
	PaymentID string
	Amount    decimal.Decimal // Major currency units
	Receipt   string          // Stable reference the processor can de-duplicate on
	Notes     map[string]string
}

// RefundResult is the processor's answer to a refund request
type RefundResult struct {
	RefundID    string
	Status      string // initiated | succeeded | failed
	Amount      decimal.Decimal
	RawResponse string
}

// RefundGateway issues refunds through the payment processor
type RefundGateway interface {
	CreateRefund(ctx context.Context, req *RefundRequest) (*RefundResult, error)
}
