package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendora/backend/internal/domain/shared"
)

// Repository defines persistence operations for return requests
type Repository interface {
	// Save persists a new return request
	Save(ctx context.Context, request *ReturnRequest) error

	// SaveWithLock persists an existing request only if its stored version
	// still equals the loaded version. A lost race yields a
	// CONCURRENT_MODIFICATION domain error.
	SaveWithLock(ctx context.Context, request *ReturnRequest) error

	// FindByID loads a request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReturnRequest, error)

	// FindAll returns requests matching the filter, paginated
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*ReturnRequest], error)

	// FindByStatus returns all requests in the given status
	FindByStatus(ctx context.Context, status Status) ([]*ReturnRequest, error)

	// CountByStatus counts requests per status
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// ExistsActiveForOrderItem reports whether a non-terminal request
	// already exists for the order item
	ExistsActiveForOrderItem(ctx context.Context, orderItemID uuid.UUID) (bool, error)
}
