package handler

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/careacademy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles manual payment recording.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ListPayments godoc
// GET /api/v1/admin/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, pagination, err := h.paymentService.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"payments": payments}, pagination)
}

// GetPayment godoc
// GET /api/v1/admin/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// UpdatePayment godoc
// PUT /api/v1/admin/payments/:id
// Records a payment as paid, or corrects the amount while it is pending.
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}
