package returns

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendora/backend/internal/domain/shared"
)

// Aggregate type constant for ReturnRequest
const AggregateTypeReturnRequest = "ReturnRequest"

// Event type constants for ReturnRequest
const (
	EventTypeReturnRequestCreated   = "ReturnRequestCreated"
	EventTypeReturnRequestApproved  = "ReturnRequestApproved"
	EventTypeReturnRequestRejected  = "ReturnRequestRejected"
	EventTypeShipmentBooked         = "ReturnShipmentBooked"
	EventTypeRefundPending          = "ReturnRefundPending"
	EventTypeProcessing             = "ReturnRequestProcessing"
	EventTypeReturnRequestCompleted = "ReturnRequestCompleted"
)

// ReturnRequestCreatedEvent is raised when a customer files a new request
type ReturnRequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID  `json:"request_id"`
	OrderID     uuid.UUID  `json:"order_id"`
	OrderItemID uuid.UUID  `json:"order_item_id"`
	BrandID     uuid.UUID  `json:"brand_id"`
	RequestType string     `json:"request_type"`
	NewVariant  *uuid.UUID `json:"new_variant_id,omitempty"`
	Reason      string     `json:"reason"`
}

// NewReturnRequestCreatedEvent creates a new ReturnRequestCreatedEvent
func NewReturnRequestCreatedEvent(rr *ReturnRequest) *ReturnRequestCreatedEvent {
	return &ReturnRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequestCreated, AggregateTypeReturnRequest, rr.ID),
		RequestID:       rr.ID,
		OrderID:         rr.OrderID,
		OrderItemID:     rr.OrderItemID,
		BrandID:         rr.BrandID,
		RequestType:     rr.Type.String(),
		NewVariant:      rr.NewVariantID,
		Reason:          rr.Reason,
	}
}

// EventType returns the event type name
func (e *ReturnRequestCreatedEvent) EventType() string {
	return EventTypeReturnRequestCreated
}

// ReturnRequestApprovedEvent is raised when a vendor approves a request
type ReturnRequestApprovedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID `json:"request_id"`
	OrderID     uuid.UUID `json:"order_id"`
	RequestType string    `json:"request_type"`
	ApprovedBy  uuid.UUID `json:"approved_by"`
}

// NewReturnRequestApprovedEvent creates a new ReturnRequestApprovedEvent
func NewReturnRequestApprovedEvent(rr *ReturnRequest) *ReturnRequestApprovedEvent {
	var approvedBy uuid.UUID
	if rr.ApprovedBy != nil {
		approvedBy = *rr.ApprovedBy
	}

	return &ReturnRequestApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequestApproved, AggregateTypeReturnRequest, rr.ID),
		RequestID:       rr.ID,
		OrderID:         rr.OrderID,
		RequestType:     rr.Type.String(),
		ApprovedBy:      approvedBy,
	}
}

// EventType returns the event type name
func (e *ReturnRequestApprovedEvent) EventType() string {
	return EventTypeReturnRequestApproved
}

// ReturnRequestRejectedEvent is raised when a vendor rejects a request
type ReturnRequestRejectedEvent struct {
	shared.BaseDomainEvent
	RequestID        uuid.UUID `json:"request_id"`
	OrderID          uuid.UUID `json:"order_id"`
	RejectedBy       uuid.UUID `json:"rejected_by"`
	RejectionComment string    `json:"rejection_comment"`
}

// NewReturnRequestRejectedEvent creates a new ReturnRequestRejectedEvent
func NewReturnRequestRejectedEvent(rr *ReturnRequest) *ReturnRequestRejectedEvent {
	var rejectedBy uuid.UUID
	if rr.RejectedBy != nil {
		rejectedBy = *rr.RejectedBy
	}

	return &ReturnRequestRejectedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeReturnRequestRejected, AggregateTypeReturnRequest, rr.ID),
		RequestID:        rr.ID,
		OrderID:          rr.OrderID,
		RejectedBy:       rejectedBy,
		RejectionComment: rr.RejectionComment,
	}
}

// EventType returns the event type name
func (e *ReturnRequestRejectedEvent) EventType() string {
	return EventTypeReturnRequestRejected
}

// ShipmentBookedEvent is raised when the carrier confirms a shipment
type ShipmentBookedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID `json:"request_id"`
	RequestType string    `json:"request_type"`
	Waybill     string    `json:"waybill"`
	CarrierRef  string    `json:"carrier_ref"`
}

// NewShipmentBookedEvent creates a new ShipmentBookedEvent
func NewShipmentBookedEvent(rr *ReturnRequest) *ShipmentBookedEvent {
	return &ShipmentBookedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentBooked, AggregateTypeReturnRequest, rr.ID),
		RequestID:       rr.ID,
		RequestType:     rr.Type.String(),
		Waybill:         rr.Waybill,
		CarrierRef:      rr.CarrierRef,
	}
}

// EventType returns the event type name
func (e *ShipmentBookedEvent) EventType() string {
	return EventTypeShipmentBooked
}

// RefundPendingEvent is raised when the pickup is booked but the refund
// has not yet been confirmed by the payment processor
type RefundPendingEvent struct {
	shared.BaseDomainEvent
	RequestID uuid.UUID `json:"request_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Waybill   string    `json:"waybill"`
}

// NewRefundPendingEvent creates a new RefundPendingEvent
func NewRefundPendingEvent(rr *ReturnRequest) *RefundPendingEvent {
	return &RefundPendingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundPending, AggregateTypeReturnRequest, rr.ID),
		RequestID:       rr.ID,
		OrderID:         rr.OrderID,
		Waybill:         rr.Waybill,
	}
}

// EventType returns the event type name
func (e *RefundPendingEvent) EventType() string {
	return EventTypeRefundPending
}

// ProcessingEvent is raised when all side effects for the current flow have
// succeeded and the request enters processing
type ProcessingEvent struct {
	shared.BaseDomainEvent
	RequestID    uuid.UUID       `json:"request_id"`
	RequestType  string          `json:"request_type"`
	Waybill      string          `json:"waybill"`
	RefundID     string          `json:"refund_id,omitempty"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

// NewProcessingEvent creates a new ProcessingEvent
func NewProcessingEvent(rr *ReturnRequest) *ProcessingEvent {
	return &ProcessingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProcessing, AggregateTypeReturnRequest, rr.ID),
		RequestID:       rr.ID,
		RequestType:     rr.Type.String(),
		Waybill:         rr.Waybill,
		RefundID:        rr.RefundID,
		RefundAmount:    rr.RefundAmount,
	}
}

// EventType returns the event type name
func (e *ProcessingEvent) EventType() string {
	return EventTypeProcessing
}

// ReturnRequestCompletedEvent is raised when the request reaches its terminal
// successful state
type ReturnRequestCompletedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID `json:"request_id"`
	OrderID     uuid.UUID `json:"order_id"`
	RequestType string    `json:"request_type"`
}

// NewReturnRequestCompletedEvent creates a new ReturnRequestCompletedEvent
func NewReturnRequestCompletedEvent(rr *ReturnRequest) *ReturnRequestCompletedEvent {
	return &ReturnRequestCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequestCompleted, AggregateTypeReturnRequest, rr.ID),
		RequestID:       rr.ID,
		OrderID:         rr.OrderID,
		RequestType:     rr.Type.String(),
	}
}

// EventType returns the event type name
func (e *ReturnRequestCompletedEvent) EventType() string {
	return EventTypeReturnRequestCompleted
}
