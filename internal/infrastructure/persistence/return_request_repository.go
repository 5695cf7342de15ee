package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/backend/internal/domain/returns"
	"github.com/vendora/backend/internal/domain/shared"
)

// GormReturnRequestRepository implements returns.Repository using GORM
type GormReturnRequestRepository struct {
	db *gorm.DB
}

// NewGormReturnRequestRepository creates a new GormReturnRequestRepository
func NewGormReturnRequestRepository(db *gorm.DB) *GormReturnRequestRepository {
	return &GormReturnRequestRepository{db: db}
}

// Save persists a new return request
func (r *GormReturnRequestRepository) Save(ctx context.Context, request *returns.ReturnRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormReturnRequestRepository) SaveWithLock(ctx context.Context, request *returns.ReturnRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&returns.ReturnRequest{}).
			Where("id = ?", request.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != request.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The request has been modified by another user")
		}

		request.Version++
		request.UpdatedAt = time.Now()

		result := tx.Model(&returns.ReturnRequest{}).
			Where("id = ? AND version = ?", request.ID, currentVersion).
			Updates(map[string]any{
				"status":             request.Status,
				"waybill":            request.Waybill,
				"carrier_ref":        request.CarrierRef,
				"carrier_response":   request.CarrierResponse,
				"refund_id":          request.RefundID,
				"refund_amount":      request.RefundAmount,
				"refund_status":      request.RefundStatus,
				"approved_at":        request.ApprovedAt,
				"approved_by":        request.ApprovedBy,
				"rejected_at":        request.RejectedAt,
				"rejected_by":        request.RejectedBy,
				"rejection_comment":  request.RejectionComment,
				"shipment_booked_at": request.ShipmentBookedAt,
				"refund_issued_at":   request.RefundIssuedAt,
				"completed_at":       request.CompletedAt,
				"version":            request.Version,
				"updated_at":         request.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The request has been modified by another user")
		}

		return nil
	})
}

// FindByID finds a return request by its ID
func (r *GormReturnRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.ReturnRequest, error) {
	var request returns.ReturnRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindAll finds return requests matching the filter, paginated
func (r *GormReturnRequestRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*returns.ReturnRequest], error) {
	var empty shared.Paginated[*returns.ReturnRequest]

	base := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&returns.ReturnRequest{}),
		filter,
	)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return empty, err
	}

	var requests []*returns.ReturnRequest
	query := r.applyOrdering(base, filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&requests).Error; err != nil {
		return empty, err
	}

	return shared.NewPaginated(requests, total, filter.Page, filter.PageSize), nil
}

// FindByStatus finds all return requests in the given status
func (r *GormReturnRequestRepository) FindByStatus(ctx context.Context, status returns.Status) ([]*returns.ReturnRequest, error) {
	var requests []*returns.ReturnRequest
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// CountByStatus counts return requests per status
func (r *GormReturnRequestRepository) CountByStatus(ctx context.Context) (map[returns.Status]int64, error) {
	type statusCount struct {
		Status returns.Status
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&returns.ReturnRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[returns.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ExistsActiveForOrderItem reports whether a non-terminal request already
// exists for the order item
func (r *GormReturnRequestRepository) ExistsActiveForOrderItem(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&returns.ReturnRequest{}).
		Where("order_item_id = ? AND status NOT IN ?", orderItemID,
			[]returns.Status{returns.StatusRejected, returns.StatusCompleted}).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyOrdering applies ordering from the filter
func (r *GormReturnRequestRepository) applyOrdering(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		return query.Order(filter.OrderBy + " " + orderDir)
	}
	return query.Order("created_at DESC")
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormReturnRequestRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("waybill LIKE ? OR reason LIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "brand_id":
			query = query.Where("brand_id = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormReturnRequestRepository implements returns.Repository
var _ returns.Repository = (*GormReturnRequestRepository)(nil)
