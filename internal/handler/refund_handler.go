package handler

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/careacademy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// RefundHandler handles refunds against paid payments.
type RefundHandler struct {
	refundService *service.RefundService
}

// NewRefundHandler creates a new RefundHandler.
func NewRefundHandler(refundService *service.RefundService) *RefundHandler {
	return &RefundHandler{refundService: refundService}
}

// ListRefunds godoc
// GET /api/v1/admin/refunds
func (h *RefundHandler) ListRefunds(c *gin.Context) {
	refunds, pagination, err := h.refundService.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"refunds": refunds}, pagination)
}

// GetRefund godoc
// GET /api/v1/admin/refunds/:id
func (h *RefundHandler) GetRefund(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	refund, err := h.refundService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"refund": refund})
}

// CreateRefund godoc
// POST /api/v1/admin/refunds
func (h *RefundHandler) CreateRefund(c *gin.Context) {
	var req model.CreateRefundRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	refund, err := h.refundService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"refund": refund})
}

// UpdateRefundStatus godoc
// PUT /api/v1/admin/refunds/:id/status
func (h *RefundHandler) UpdateRefundStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateRefundStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	refund, err := h.refundService.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"refund": refund})
}
