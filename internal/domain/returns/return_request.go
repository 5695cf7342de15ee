package returns

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendora/backend/internal/domain/shared"
)

// RequestType distinguishes refund returns from replacements
type RequestType string

const (
	RequestTypeReturn  RequestType = "RETURN"
	RequestTypeReplace RequestType = "REPLACE"
)

// IsValid checks if the type is a valid RequestType
func (t RequestType) IsValid() bool {
	return t == RequestTypeReturn || t == RequestTypeReplace
}

// String returns the string representation of RequestType
func (t RequestType) String() string {
	return string(t)
}

// Status represents the lifecycle status of a return request
type Status string

const (
	StatusPending       Status = "PENDING"        // Waiting for vendor decision
	StatusApproved      Status = "APPROVED"       // Approved, shipment not yet booked
	StatusRejected      Status = "REJECTED"       // Rejected by vendor
	StatusRefundPending Status = "REFUND_PENDING" // Pickup booked, refund not yet confirmed
	StatusProcessing    Status = "PROCESSING"     // Shipment (and refund, for returns) in flight
	StatusCompleted     Status = "COMPLETED"      // Goods received back / replacement delivered
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected,
		StatusRefundPending, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved:
		return target == StatusRefundPending || target == StatusProcessing
	case StatusRefundPending:
		return target == StatusProcessing
	case StatusProcessing:
		return target == StatusCompleted
	case StatusRejected, StatusCompleted:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// RefundStatus values reported by the payment processor
const (
	RefundStatusInitiated = "initiated"
	RefundStatusSucceeded = "succeeded"
	RefundStatusFailed    = "failed"
)

// ReturnRequest is the aggregate root for a customer return or replacement.
// It tracks the vendor decision, the reverse (and forward, for replacements)
// shipment booked with the carrier, and the refund issued for returns.
type ReturnRequest struct {
	shared.BaseAggregateRoot
	OrderID      uuid.UUID
	OrderItemID  uuid.UUID
	BrandID      uuid.UUID
	Type         RequestType
	NewVariantID *uuid.UUID // Replacement variant, set only for REPLACE
	Status       Status
	Reason       string
	Comment      string
	Images       []string `gorm:"serializer:json"`

	// Shipment outcome
	Waybill         string
	CarrierRef      string
	CarrierResponse string // Raw carrier response kept for audit

	// Refund outcome (returns only)
	RefundID     string
	RefundAmount decimal.Decimal
	RefundStatus string

	ApprovedAt       *time.Time
	ApprovedBy       *uuid.UUID
	RejectedAt       *time.Time
	RejectedBy       *uuid.UUID
	RejectionComment string
	ShipmentBookedAt *time.Time
	RefundIssuedAt   *time.Time
	CompletedAt      *time.Time
}

// NewReturnRequest creates a new return request in PENDING status.
// A replacement must name the new variant; a refund return must not.
func NewReturnRequest(
	orderID, orderItemID, brandID uuid.UUID,
	requestType RequestType,
	newVariantID *uuid.UUID,
	reason, comment string,
	images []string,
) (*ReturnRequest, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if orderItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER_ITEM", "Order item ID cannot be empty")
	}
	if brandID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRAND", "Brand ID cannot be empty")
	}
	if !requestType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Request type must be RETURN or REPLACE")
	}
	if requestType == RequestTypeReplace && (newVariantID == nil || *newVariantID == uuid.Nil) {
		return nil, shared.NewDomainError("VALIDATION_VARIANT_REQUIRED", "Replacement requests must specify the new variant")
	}
	if requestType == RequestTypeReturn && newVariantID != nil {
		return nil, shared.NewDomainError("VALIDATION_VARIANT_FORBIDDEN", "Refund returns cannot specify a new variant")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason cannot be empty")
	}

	rr := &ReturnRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		OrderItemID:       orderItemID,
		BrandID:           brandID,
		Type:              requestType,
		NewVariantID:      newVariantID,
		Status:            StatusPending,
		Reason:            reason,
		Comment:           comment,
		Images:            images,
		RefundAmount:      decimal.Zero,
	}

	rr.AddDomainEvent(NewReturnRequestCreatedEvent(rr))

	return rr, nil
}

// Approve approves the request
// Transitions from PENDING to APPROVED
func (r *ReturnRequest) Approve(approverID uuid.UUID) error {
	if !r.Status.CanTransitionTo(StatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve request in %s status", r.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	r.Status = StatusApproved
	r.ApprovedAt = &now
	r.ApprovedBy = &approverID
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnRequestApprovedEvent(r))

	return nil
}

// Reject rejects the request
// Transitions from PENDING to REJECTED
func (r *ReturnRequest) Reject(rejecterID uuid.UUID, comment string) error {
	if !r.Status.CanTransitionTo(StatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject request in %s status", r.Status))
	}
	if rejecterID == uuid.Nil {
		return shared.NewDomainError("INVALID_REJECTER", "Rejecter ID cannot be empty")
	}
	if comment == "" {
		return shared.NewDomainError("INVALID_COMMENT", "Rejection comment is required")
	}

	now := time.Now()
	r.Status = StatusRejected
	r.RejectedAt = &now
	r.RejectedBy = &rejecterID
	r.RejectionComment = comment
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnRequestRejectedEvent(r))

	return nil
}

// RecordReturnShipment records a confirmed carrier pickup for a refund return.
// The carrier call must have succeeded before this is invoked.
// Transitions from APPROVED to REFUND_PENDING
func (r *ReturnRequest) RecordReturnShipment(waybill, carrierRef, rawResponse string) error {
	if r.Type != RequestTypeReturn {
		return shared.NewDomainError("INVALID_TYPE", "Return shipment applies only to RETURN requests")
	}
	if !r.Status.CanTransitionTo(StatusRefundPending) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot book return shipment in %s status", r.Status))
	}
	if waybill == "" {
		return shared.NewDomainError("INVALID_WAYBILL", "Waybill cannot be empty")
	}

	now := time.Now()
	r.Status = StatusRefundPending
	r.Waybill = waybill
	r.CarrierRef = carrierRef
	r.CarrierResponse = rawResponse
	r.ShipmentBookedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewShipmentBookedEvent(r))
	r.AddDomainEvent(NewRefundPendingEvent(r))

	return nil
}

// RecordReplacementShipment records a confirmed carrier booking for a
// replacement. No refund is involved for replacements.
// Transitions from APPROVED to PROCESSING
func (r *ReturnRequest) RecordReplacementShipment(waybill, carrierRef, rawResponse string) error {
	if r.Type != RequestTypeReplace {
		return shared.NewDomainError("INVALID_TYPE", "Replacement shipment applies only to REPLACE requests")
	}
	if r.Status != StatusApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot book replacement shipment in %s status", r.Status))
	}
	if waybill == "" {
		return shared.NewDomainError("INVALID_WAYBILL", "Waybill cannot be empty")
	}

	now := time.Now()
	r.Status = StatusProcessing
	r.Waybill = waybill
	r.CarrierRef = carrierRef
	r.CarrierResponse = rawResponse
	r.ShipmentBookedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewShipmentBookedEvent(r))
	r.AddDomainEvent(NewProcessingEvent(r))

	return nil
}

// ConfirmRefund records a refund accepted by the payment processor.
// Transitions from REFUND_PENDING to PROCESSING
func (r *ReturnRequest) ConfirmRefund(refundID string, amount decimal.Decimal, refundStatus string) error {
	if !r.Status.CanTransitionTo(StatusProcessing) || r.Status != StatusRefundPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm refund in %s status", r.Status))
	}
	if refundID == "" {
		return shared.NewDomainError("INVALID_REFUND", "Refund ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}

	now := time.Now()
	r.Status = StatusProcessing
	r.RefundID = refundID
	r.RefundAmount = amount
	r.RefundStatus = refundStatus
	r.RefundIssuedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewProcessingEvent(r))

	return nil
}

// Complete marks the request as completed
// Transitions from PROCESSING to COMPLETED
func (r *ReturnRequest) Complete() error {
	if !r.Status.CanTransitionTo(StatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete request in %s status", r.Status))
	}

	now := time.Now()
	r.Status = StatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnRequestCompletedEvent(r))

	return nil
}

// IsPending returns true if the request awaits a vendor decision
func (r *ReturnRequest) IsPending() bool {
	return r.Status == StatusPending
}

// IsApproved returns true if the request is approved
func (r *ReturnRequest) IsApproved() bool {
	return r.Status == StatusApproved
}

// IsRefundPending returns true if the pickup is booked but the refund is unresolved
func (r *ReturnRequest) IsRefundPending() bool {
	return r.Status == StatusRefundPending
}

// IsProcessing returns true if the request is being processed
func (r *ReturnRequest) IsProcessing() bool {
	return r.Status == StatusProcessing
}

// IsTerminal returns true if the request is in a terminal state
func (r *ReturnRequest) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// HasShipment returns true if a carrier shipment has been booked
func (r *ReturnRequest) HasShipment() bool {
	return r.Waybill != ""
}
