package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	returnsapp "github.com/vendora/backend/internal/application/returns"
	"github.com/vendora/backend/internal/domain/returns"
	"github.com/vendora/backend/internal/interfaces/http/dto"
	"github.com/vendora/backend/internal/interfaces/http/middleware"
)

// ReturnRequestHandler handles return request API endpoints
type ReturnRequestHandler struct {
	BaseHandler
	service *returnsapp.Service
}

// NewReturnRequestHandler creates a new ReturnRequestHandler
func NewReturnRequestHandler(service *returnsapp.Service) *ReturnRequestHandler {
	return &ReturnRequestHandler{service: service}
}

// RegisterRoutes registers return request routes
func (h *ReturnRequestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/return-requests")
	{
		requests.GET("", h.List)
		requests.POST("", h.Create)
		requests.GET("/stats/count", h.CountByStatus)
		requests.GET("/:id", h.Get)
		requests.POST("/:id/approve", h.Approve)
		requests.POST("/:id/reject", h.Reject)
		requests.POST("/:id/return-shipment", h.CreateReturnShipment)
		requests.POST("/:id/replace-shipment", h.CreateReplaceShipment)
		requests.POST("/:id/retry-refund", h.RetryRefund)
		requests.POST("/:id/complete", h.MarkCompleted)
		requests.GET("/:id/tracking", h.Track)
	}
}

// ListReturnRequestsQuery represents list query parameters
type ListReturnRequestsQuery struct {
	dto.ListRequest
	Status  string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED REFUND_PENDING PROCESSING COMPLETED"`
	Type    string `form:"type" binding:"omitempty,oneof=RETURN REPLACE"`
	OrderID string `form:"order_id" binding:"omitempty,uuid"`
	BrandID string `form:"brand_id" binding:"omitempty,uuid"`
}

// Create files a new return or replacement request
func (h *ReturnRequestHandler) Create(c *gin.Context) {
	var input returnsapp.CreateReturnRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	response, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// Get retrieves a return request by ID
func (h *ReturnRequestHandler) Get(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	response, err := h.service.GetByID(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// List retrieves return requests with filtering and pagination
func (h *ReturnRequestHandler) List(c *gin.Context) {
	var query ListReturnRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := returnsapp.ReturnRequestListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
	}
	if query.Status != "" {
		status := returns.Status(query.Status)
		filter.Status = &status
	}
	if query.Type != "" {
		requestType := returns.RequestType(query.Type)
		filter.Type = &requestType
	}
	if query.OrderID != "" {
		orderID, err := uuid.Parse(query.OrderID)
		if err != nil {
			h.BadRequest(c, "Invalid order ID format")
			return
		}
		filter.OrderID = &orderID
	}
	if query.BrandID != "" {
		brandID, err := uuid.Parse(query.BrandID)
		if err != nil {
			h.BadRequest(c, "Invalid brand ID format")
			return
		}
		filter.BrandID = &brandID
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CountByStatus returns the number of requests in each lifecycle status
func (h *ReturnRequestHandler) CountByStatus(c *gin.Context) {
	counts, err := h.service.CountByStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, counts)
}

// Approve approves a pending request
func (h *ReturnRequestHandler) Approve(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	operatorID, err := getOperatorID(c)
	if err != nil {
		h.Unauthorized(c, "Operator not authenticated")
		return
	}

	response, err := h.service.Approve(c.Request.Context(), requestID, operatorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Reject rejects a pending request with a mandatory comment
func (h *ReturnRequestHandler) Reject(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	operatorID, err := getOperatorID(c)
	if err != nil {
		h.Unauthorized(c, "Operator not authenticated")
		return
	}

	var input returnsapp.RejectReturnRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Rejection comment is required")
		return
	}

	response, err := h.service.Reject(c.Request.Context(), requestID, operatorID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// CreateReturnShipment books the customer pickup and issues the refund
func (h *ReturnRequestHandler) CreateReturnShipment(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	response, err := h.service.CreateReturnShipment(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// CreateReplaceShipment books the replacement delivery
func (h *ReturnRequestHandler) CreateReplaceShipment(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	response, err := h.service.CreateReplaceShipment(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// RetryRefund re-issues the refund for a request stuck in refund pending
func (h *ReturnRequestHandler) RetryRefund(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	response, err := h.service.RetryRefund(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// MarkCompleted closes out a processing request
func (h *ReturnRequestHandler) MarkCompleted(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	response, err := h.service.MarkCompleted(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Track returns the normalized carrier scan history for a request
func (h *ReturnRequestHandler) Track(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	events, err := h.service.Track(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}
