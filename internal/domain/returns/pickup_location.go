package returns

import (
	"strings"

	"github.com/google/uuid"
)

const pickupNamePrefixLen = 12

// PickupLocationCode derives the carrier-registered pickup location name for
// a brand. The code is deterministic so repeated bookings for the same brand
// always hit the same registered location: an upper-cased alphanumeric
// prefix of the brand name joined with a stable fragment of the brand ID.
func PickupLocationCode(brandID uuid.UUID, brandName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(brandName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() >= pickupNamePrefixLen {
			break
		}
	}
	prefix := b.String()
	if prefix == "" {
		prefix = "BRAND"
	}

	idHex := strings.ReplaceAll(brandID.String(), "-", "")
	return prefix + "-" + strings.ToUpper(idHex[:8])
}
