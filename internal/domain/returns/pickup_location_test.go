package returns

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPickupLocationCode(t *testing.T) {
	brandID := uuid.MustParse("a1b2c3d4-0000-4000-8000-000000000001")

	t.Run("deterministic for same brand", func(t *testing.T) {
		first := PickupLocationCode(brandID, "Acme Apparel")
		second := PickupLocationCode(brandID, "Acme Apparel")
		assert.Equal(t, first, second)
	})

	t.Run("strips non alphanumeric characters", func(t *testing.T) {
		code := PickupLocationCode(brandID, "Röhm & Sons, Ltd.")
		prefix := strings.Split(code, "-")[0]
		for _, r := range prefix {
			valid := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			assert.True(t, valid, "unexpected rune %q", r)
		}
	})

	t.Run("caps the name prefix", func(t *testing.T) {
		code := PickupLocationCode(brandID, "An Extremely Long Brand Name Incorporated")
		prefix := strings.Split(code, "-")[0]
		assert.LessOrEqual(t, len(prefix), 12)
	})

	t.Run("falls back when name has no usable characters", func(t *testing.T) {
		code := PickupLocationCode(brandID, "!!!")
		assert.True(t, strings.HasPrefix(code, "BRAND-"))
	})

	t.Run("embeds stable brand id fragment", func(t *testing.T) {
		code := PickupLocationCode(brandID, "Acme")
		assert.True(t, strings.HasSuffix(code, "A1B2C3D4"))
	})

	t.Run("different brands get different codes", func(t *testing.T) {
		other := uuid.MustParse("ffffffff-0000-4000-8000-000000000002")
		assert.NotEqual(t,
			PickupLocationCode(brandID, "Acme"),
			PickupLocationCode(other, "Acme"),
		)
	})
}
