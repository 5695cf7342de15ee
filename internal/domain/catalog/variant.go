package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Variant is a read-only view of a sellable variant. Catalog management is
// external; replacement shipments need the SKU, size and product title to
// describe the outgoing item to the carrier.
type Variant struct {
	ID           uuid.UUID
	BrandID      uuid.UUID
	SKU          string
	Size         string
	ProductTitle string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Description renders the variant the way carrier manifests expect
func (v *Variant) Description() string {
	if v.Size == "" {
		return v.ProductTitle
	}
	return v.ProductTitle + " (" + v.Size + ")"
}

// Repository provides read access to variants
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)
}
