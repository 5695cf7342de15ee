package shared

import (
	"context"
	"time"
)

// IdempotencyStore guards operations that must not run twice for the same
// stable reference, e.g. shipment submissions retried over the network
type IdempotencyStore interface {
	// MarkProcessed marks a key as in-flight with a TTL.
	// Returns true if the key was newly marked, false if it already existed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a key is currently marked.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a key so the guarded operation can be retried
	// after a failure.
	Release(ctx context.Context, key string) error
}
