package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryAddress is the customer address an order was delivered to
type DeliveryAddress struct {
	Name    string
	Street  string
	City    string
	State   string
	Country string
	Pin     string
	Phone   string
}

// OrderItem is a purchased line within an order
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	VariantID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order is a read-only view of a placed order. Checkout and fulfillment are
// owned by the commerce platform; this service only consumes the data it
// needs to arrange reverse logistics and refunds.
type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	CustomerName    string
	DeliveryAddress DeliveryAddress `gorm:"embedded;embeddedPrefix:delivery_"`
	PaymentID       string
	TotalAmount     decimal.Decimal
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item returns the order item with the given ID, or nil
func (o *Order) Item(itemID uuid.UUID) *OrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// Repository provides read access to orders
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
}
