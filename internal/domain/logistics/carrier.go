package logistics

import (
	"context"
	"time"
)

// Flow identifies the direction of a booked shipment
type Flow string

const (
	// FlowRTO picks the original item up from the customer and returns it
	// to the brand warehouse
	FlowRTO Flow = "RTO"

	// FlowREPL ships a replacement out and collects the original item on
	// delivery
	FlowREPL Flow = "REPL"
)

// Address is a shipping address as carriers expect it
type Address struct {
	Name    string
	Street  string
	City    string
	State   string
	Country string
	Pin     string
	Phone   string
}

// ShipmentRequest describes a shipment to be booked with the carrier
type ShipmentRequest struct {
	Flow               Flow
	OrderNumber        string // Stable order reference, used by the carrier for duplicate detection
	PickupLocationCode string
	Pickup             Address
	Drop               Address
	ProductsDesc       string
	ReturnDesc         string // Item collected on delivery, REPL only
	Quantity           int
	TotalAmount        string
}

// ShipmentResult is the carrier's answer to a booking
type ShipmentResult struct {
	Success     bool
	Waybill     string
	RefNum      string
	Remarks     string
	RawResponse string
}

// TrackingEvent is one normalized scan from the carrier's tracking feed
type TrackingEvent struct {
	Status      string
	Detail      string
	Time        time.Time
	DisplayTime string
}

// CarrierGateway books and tracks shipments with the logistics partner
type CarrierGateway interface {
	// CreateShipment books a shipment. A carrier-reported business failure
	// surfaces as a shared.ExternalServiceError, never as a zero-value
	// result.
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResult, error)

	// TrackShipment returns the normalized scan history for a waybill,
	// sorted ascending by scan time.
	TrackShipment(ctx context.Context, waybill string) ([]TrackingEvent, error)
}
