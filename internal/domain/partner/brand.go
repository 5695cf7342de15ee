package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BrandAddress is the registered warehouse address returned goods ship to
type BrandAddress struct {
	Street  string
	City    string
	State   string
	Country string
	Pin     string
	Phone   string
}

// Brand is a read-only view of a vendor brand. Onboarding and brand
// management live in the platform; reverse logistics only needs the name
// and the warehouse address.
type Brand struct {
	ID               uuid.UUID
	Name             string
	WarehouseAddress BrandAddress `gorm:"embedded;embeddedPrefix:warehouse_"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Repository provides read access to brands
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Brand, error)
}
