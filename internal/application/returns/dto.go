package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendora/backend/internal/domain/logistics"
	"github.com/vendora/backend/internal/domain/returns"
)

// CreateReturnRequestInput represents a request to file a return or replacement
type CreateReturnRequestInput struct {
	OrderID      uuid.UUID  `json:"order_id" binding:"required"`
	OrderItemID  uuid.UUID  `json:"order_item_id" binding:"required"`
	Type         string     `json:"type" binding:"required,oneof=RETURN REPLACE"`
	NewVariantID *uuid.UUID `json:"new_variant_id"`
	Reason       string     `json:"reason" binding:"required"`
	Comment      string     `json:"comment"`
	Images       []string   `json:"images"`
}

// RejectReturnRequestInput carries the mandatory rejection comment
type RejectReturnRequestInput struct {
	Comment string `json:"comment" binding:"required"`
}

// ReturnRequestListFilter represents list filtering options
type ReturnRequestListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Status   *returns.Status
	Type     *returns.RequestType
	OrderID  *uuid.UUID
	BrandID  *uuid.UUID
}

// ReturnRequestResponse represents a return request in API responses
type ReturnRequestResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          uuid.UUID       `json:"order_id"`
	OrderItemID      uuid.UUID       `json:"order_item_id"`
	BrandID          uuid.UUID       `json:"brand_id"`
	Type             string          `json:"type"`
	NewVariantID     *uuid.UUID      `json:"new_variant_id,omitempty"`
	Status           string          `json:"status"`
	Reason           string          `json:"reason"`
	Comment          string          `json:"comment,omitempty"`
	Images           []string        `json:"images,omitempty"`
	Waybill          string          `json:"waybill,omitempty"`
	CarrierRef       string          `json:"carrier_ref,omitempty"`
	RefundID         string          `json:"refund_id,omitempty"`
	RefundAmount     decimal.Decimal `json:"refund_amount"`
	RefundStatus     string          `json:"refund_status,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	RejectedAt       *time.Time      `json:"rejected_at,omitempty"`
	RejectedBy       *uuid.UUID      `json:"rejected_by,omitempty"`
	RejectionComment string          `json:"rejection_comment,omitempty"`
	ShipmentBookedAt *time.Time      `json:"shipment_booked_at,omitempty"`
	RefundIssuedAt   *time.Time      `json:"refund_issued_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// TrackingEventResponse represents one normalized carrier scan
type TrackingEventResponse struct {
	Status      string `json:"status"`
	Detail      string `json:"detail"`
	Time        string `json:"time,omitempty"`
	DisplayTime string `json:"display_time"`
}

// ToReturnRequestResponse converts a domain ReturnRequest to a response DTO
func ToReturnRequestResponse(rr *returns.ReturnRequest) ReturnRequestResponse {
	return ReturnRequestResponse{
		ID:               rr.ID,
		OrderID:          rr.OrderID,
		OrderItemID:      rr.OrderItemID,
		BrandID:          rr.BrandID,
		Type:             string(rr.Type),
		NewVariantID:     rr.NewVariantID,
		Status:           string(rr.Status),
		Reason:           rr.Reason,
		Comment:          rr.Comment,
		Images:           rr.Images,
		Waybill:          rr.Waybill,
		CarrierRef:       rr.CarrierRef,
		RefundID:         rr.RefundID,
		RefundAmount:     rr.RefundAmount,
		RefundStatus:     rr.RefundStatus,
		ApprovedAt:       rr.ApprovedAt,
		ApprovedBy:       rr.ApprovedBy,
		RejectedAt:       rr.RejectedAt,
		RejectedBy:       rr.RejectedBy,
		RejectionComment: rr.RejectionComment,
		ShipmentBookedAt: rr.ShipmentBookedAt,
		RefundIssuedAt:   rr.RefundIssuedAt,
		CompletedAt:      rr.CompletedAt,
		CreatedAt:        rr.CreatedAt,
		UpdatedAt:        rr.UpdatedAt,
		Version:          rr.Version,
	}
}

// ToReturnRequestResponses converts a slice of domain requests
func ToReturnRequestResponses(requests []*returns.ReturnRequest) []ReturnRequestResponse {
	out := make([]ReturnRequestResponse, len(requests))
	for i, rr := range requests {
		out[i] = ToReturnRequestResponse(rr)
	}
	return out
}

// ToTrackingEventResponses converts normalized carrier scans to DTOs
func ToTrackingEventResponses(events []logistics.TrackingEvent) []TrackingEventResponse {
	out := make([]TrackingEventResponse, len(events))
	for i, ev := range events {
		resp := TrackingEventResponse{
			Status:      ev.Status,
			Detail:      ev.Detail,
			DisplayTime: ev.DisplayTime,
		}
		if !ev.Time.IsZero() {
			resp.Time = ev.Time.Format(time.RFC3339)
		}
		out[i] = resp
	}
	return out
}
