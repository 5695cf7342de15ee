package returns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/logistics"
	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/partner"
	"github.com/vendora/backend/internal/domain/payment"
	"github.com/vendora/backend/internal/domain/returns"
	"github.com/vendora/backend/internal/domain/shared"
)

// Shipment submissions are guarded for long enough to cover carrier retries
const shipmentGuardTTL = 10 * time.Minute

// Service orchestrates the return request lifecycle: vendor decisions,
// carrier bookings and refunds. External calls are validated before any
// status transition is persisted, so a failed booking or refund never
// advances the request.
type Service struct {
	requestRepo    returns.Repository
	orderRepo      order.Repository
	brandRepo      partner.Repository
	variantRepo    catalog.Repository
	carrier        logistics.CarrierGateway
	refunds        payment.RefundGateway
	submissions    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new return request service
func NewService(
	requestRepo returns.Repository,
	orderRepo order.Repository,
	brandRepo partner.Repository,
	variantRepo catalog.Repository,
	carrier logistics.CarrierGateway,
	refunds payment.RefundGateway,
	submissions shared.IdempotencyStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		requestRepo: requestRepo,
		orderRepo:   orderRepo,
		brandRepo:   brandRepo,
		variantRepo: variantRepo,
		carrier:     carrier,
		refunds:     refunds,
		submissions: submissions,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create files a new return or replacement request for a delivered order item
func (s *Service) Create(ctx context.Context, input CreateReturnRequestInput) (*ReturnRequestResponse, error) {
	ord, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	item := ord.Item(input.OrderItemID)
	if item == nil {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found: "+input.OrderItemID.String())
	}

	variant, err := s.variantRepo.FindByID(ctx, item.VariantID)
	if err != nil {
		return nil, err
	}

	active, err := s.requestRepo.ExistsActiveForOrderItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, shared.NewDomainError("DUPLICATE_REQUEST", "An open request already exists for this order item")
	}

	rr, err := returns.NewReturnRequest(
		ord.ID, item.ID, variant.BrandID,
		returns.RequestType(input.Type), input.NewVariantID,
		input.Reason, input.Comment, input.Images,
	)
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.Save(ctx, rr); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, rr)

	response := ToReturnRequestResponse(rr)
	return &response, nil
}

// Approve approves a pending request
func (s *Service) Approve(ctx context.Context, requestID, approverID uuid.UUID) (*ReturnRequestResponse, error) {
	rr, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := rr.Approve(approverID); err != nil {
		return nil, err
	}

	if err := s.requestRepo.SaveWithLock(ctx, rr); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, rr)

	response := ToReturnRequestResponse(rr)
	return &response, nil
}

// Reject rejects a pending request with a mandatory comment
func (s *Service) Reject(ctx context.Context, requestID, rejecterID uuid.UUID, input RejectReturnRequestInput) (*ReturnRequestResponse, error) {
	rr, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := rr.Reject(rejecterID, input.Comment); err != nil {
		return nil, err
	}

	if err := s.requestRepo.SaveWithLock(ctx, rr); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, rr)

	response := ToReturnRequestResponse(rr)
	return &response, nil
}

// CreateReturnShipment books the customer pickup for an approved refund
// return, then issues the refund. The carrier booking is validated before the
// status changes; a refund failure leaves the request in REFUND_PENDING for
// later retry.
func (s *Service) CreateReturnShipment(ctx context.Context, requestID uuid.UUID) (*ReturnRequestResponse, error) {
	rr, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if rr.Type != returns.RequestTypeReturn {
		return nil, shared.NewDomainError("INVALID_TYPE", "Request is not a refund return")
	}
	if !rr.IsApproved() {
		return nil, shared.NewDomainError("INVALID_STATE", "Shipment can only be booked for approved requests")
	}

	ord, item, brand, variant, err := s.loadShipmentContext(ctx, rr)
	if err != nil {
		return nil, err
	}

	guardKey := "return-shipment:" + rr.ID.String()
	fresh, err := s.submissions.MarkProcessed(ctx, guardKey, shipmentGuardTTL)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, shared.NewDomainError("SUBMISSION_IN_PROGRESS", "A shipment submission for this request is already in progress")
	}

	shipReq := &logistics.ShipmentRequest{
		Flow:               logistics.FlowRTO,
		OrderNumber:        ord.OrderNumber,
		PickupLocationCode: returns.PickupLocationCode(brand.ID, brand.Name),
		Pickup:             customerAddress(ord),
		Drop:               brandAddress(brand),
		ProductsDesc:       variant.Description(),
		Quantity:           item.Quantity,
		TotalAmount:        ord.TotalAmount.String(),
	}

	result, err := s.carrier.CreateShipment(ctx, shipReq)
	if err != nil {
		s.releaseGuard(ctx, guardKey)
		return nil, err
	}

	if err := rr.RecordReturnShipment(result.Waybill, result.RefNum, result.RawResponse); err != nil {
		s.releaseGuard(ctx, guardKey)
		return nil, err
	}

	if err := s.requestRepo.SaveWithLock(ctx, rr); err != nil {
		s.releaseGuard(ctx, guardKey)
		return nil, err
	}

	s.publishEvents(ctx, rr)

	if err := s.issueRefund(ctx, rr, ord); err != nil {
		s.logger.Warn("refund failed after pickup booked, request left in refund pending",
			zap.String("request_id", rr.ID.String()),
			zap.String("waybill", rr.Waybill),
			zap.Error(err))
		return nil, err
	}

	response := ToReturnRequestResponse(rr)
	return &response, nil
}

// CreateReplaceShipment books the replacement delivery for an approved
// replacement request. Replacements never involve a refund.
func (s *Service) CreateReplaceShipment(ctx context.Context, requestID uuid.UUID) (*ReturnRequestResponse, error) {
	rr, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if rr.Type != returns.RequestTypeReplace {
		return nil, shared.NewDomainError("INVALID_TYPE", "Request is not a replacement")
	}
	if !rr.IsApproved() {
		return nil, shared.NewDomainError("INVALID_STATE", "Shipment can only be booked for approved requests")
	}

	ord, item, brand, variant, err := s.loadShipmentContext(ctx, rr)
	if err != nil {
		return nil, err
	}

	newVariant, err := s.variantRepo.FindByID(ctx, *rr.NewVariantID)
	if err != nil {
		return nil, err
	}

	guardKey := "replace-shipment:" + rr.ID.String()
	fresh, err := s.submissions.MarkProcessed(ctx, guardKey, shipmentGuardTTL)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, shared.NewDomainError("SUBMISSION_IN_PROGRESS", "A shipment submission for this request is already in progress")
	}

	shipReq := &logistics.ShipmentRequest{
		Flow:               logistics.FlowREPL,
		OrderNumber:        ord.OrderNumber,
		PickupLocationCode: returns.PickupLocationCode(brand.ID, brand.Name),
		Pickup:             brandAddress(brand),
		Drop:               customerAddress(ord),
		ProductsDesc:       newVariant.Description(),
		ReturnDesc:         variant.Description(),
		Quantity:           item.Quantity,
		TotalAmount:        ord.TotalAmount.String(),
	}

	result, err := s.carrier.CreateShipment(ctx, shipReq)
	if err != nil {
		s.releaseGuard(ctx, guardKey)
		return nil, err
	}

	if err := rr.RecordReplacementShipment(result.Waybill, result.RefNum, result.RawResponse); err != nil {
		s.releaseGuard(ctx, guardKey)
		return nil, err
	}

	if err := s.requestRepo.SaveWithLock(ctx, rr); err != nil {
		s.releaseGuard(ctx, guardKey)
		return nil, err
	}

	s.publishEvents(ctx, rr)

	response := ToReturnRequestResponse(rr)
	return &response, nil
}

// RetryRefund re-issues the refund for a request stuck in REFUND_PENDING.
// The receipt is the request ID, so the processor de-duplicates repeats.
func (s *Service) RetryRefund(ctx context.Context, requestID uuid.UUID) (*ReturnRequestResponse, error) {
	rr, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !rr.IsRefundPending() {
		return nil, shared.NewDomainError("INVALID_STATE", "Refund can only be retried while the request is refund pending")
	}

	ord, err := s.orderRepo.FindByID(ctx, rr.OrderID)
	if err != nil {
		return nil, err
	}

	if err := s.issueRefund(ctx, rr, ord); err != nil {
		return nil, err
	}

	response := ToReturnRequestResponse(rr)
	return &response, nil
}

// MarkCompleted closes out a processing request
func (s *Service) MarkCompleted(ctx context.Context, requestID uuid.UUID) (*ReturnRequestResponse, error) {
	rr, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := rr.Complete(); err != nil {
		return nil, err
	}

	if err := s.requestRepo.SaveWithLock(ctx, rr); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, rr)

	response := ToReturnRequestResponse(rr)
	return &response, nil
}

// Track returns the normalized carrier scan history for a request's shipment
func (s *Service) Track(ctx context.Context, requestID uuid.UUID) ([]TrackingEventResponse, error) {
	rr, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !rr.HasShipment() {
		return nil, shared.NewDomainError("NO_SHIPMENT", "No shipment has been booked for this request")
	}

	events, err := s.carrier.TrackShipment(ctx, rr.Waybill)
	if err != nil {
		return nil, err
	}

	return ToTrackingEventResponses(events), nil
}

// GetByID retrieves a request by ID
func (s *Service) GetByID(ctx context.Context, requestID uuid.UUID) (*ReturnRequestResponse, error) {
	rr, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	response := ToReturnRequestResponse(rr)
	return &response, nil
}

// CountByStatus returns the number of requests in each lifecycle status
func (s *Service) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(counts))
	for status, count := range counts {
		out[string(status)] = count
	}
	return out, nil
}

// List retrieves requests with filtering and pagination
func (s *Service) List(ctx context.Context, filter ReturnRequestListFilter) (shared.Paginated[ReturnRequestResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.Type != nil {
		domainFilter.Filters["type"] = string(*filter.Type)
	}
	if filter.OrderID != nil {
		domainFilter.Filters["order_id"] = *filter.OrderID
	}
	if filter.BrandID != nil {
		domainFilter.Filters["brand_id"] = *filter.BrandID
	}

	page, err := s.requestRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[ReturnRequestResponse]{}, err
	}

	return shared.Paginated[ReturnRequestResponse]{
		Items:      ToReturnRequestResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// issueRefund issues exactly one refund for the full order amount and, on
// acceptance, moves the request from REFUND_PENDING to PROCESSING
func (s *Service) issueRefund(ctx context.Context, rr *returns.ReturnRequest, ord *order.Order) error {
	result, err := s.refunds.CreateRefund(ctx, &payment.RefundRequest{
		PaymentID: ord.PaymentID,
		Amount:    ord.TotalAmount,
		Receipt:   rr.ID.String(),
		Notes: map[string]string{
			"return_request_id": rr.ID.String(),
			"order_number":      ord.OrderNumber,
		},
	})
	if err != nil {
		return err
	}
	if result.Status == returns.RefundStatusFailed {
		return shared.NewPermanentExternalError(shared.ExternalServicePayment, "REFUND_FAILED", "Payment processor reported the refund as failed")
	}

	if err := rr.ConfirmRefund(result.RefundID, result.Amount, result.Status); err != nil {
		return err
	}

	if err := s.requestRepo.SaveWithLock(ctx, rr); err != nil {
		return err
	}

	s.publishEvents(ctx, rr)

	return nil
}

// loadShipmentContext resolves the collaborator data a booking needs
func (s *Service) loadShipmentContext(ctx context.Context, rr *returns.ReturnRequest) (*order.Order, *order.OrderItem, *partner.Brand, *catalog.Variant, error) {
	ord, err := s.orderRepo.FindByID(ctx, rr.OrderID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	item := ord.Item(rr.OrderItemID)
	if item == nil {
		return nil, nil, nil, nil, shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
	}

	brand, err := s.brandRepo.FindByID(ctx, rr.BrandID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	variant, err := s.variantRepo.FindByID(ctx, item.VariantID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return ord, item, brand, variant, nil
}

func (s *Service) publishEvents(ctx context.Context, rr *returns.ReturnRequest) {
	if s.eventPublisher == nil {
		rr.ClearDomainEvents()
		return
	}
	for _, event := range rr.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	rr.ClearDomainEvents()
}

func (s *Service) releaseGuard(ctx context.Context, key string) {
	if err := s.submissions.Release(ctx, key); err != nil {
		s.logger.Warn("failed to release submission guard", zap.String("key", key), zap.Error(err))
	}
}

func customerAddress(ord *order.Order) logistics.Address {
	return logistics.Address{
		Name:    ord.CustomerName,
		Street:  ord.DeliveryAddress.Street,
		City:    ord.DeliveryAddress.City,
		State:   ord.DeliveryAddress.State,
		Country: ord.DeliveryAddress.Country,
		Pin:     ord.DeliveryAddress.Pin,
		Phone:   ord.DeliveryAddress.Phone,
	}
}

func brandAddress(brand *partner.Brand) logistics.Address {
	return logistics.Address{
		Name:    brand.Name,
		Street:  brand.WarehouseAddress.Street,
		City:    brand.WarehouseAddress.City,
		State:   brand.WarehouseAddress.State,
		Country: brand.WarehouseAddress.Country,
		Pin:     brand.WarehouseAddress.Pin,
		Phone:   brand.WarehouseAddress.Phone,
	}
}
