package handler

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/middleware"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/careacademy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// EnrollmentHandler serves both the user's own enrollments and the admin
// enrollment desk.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// ListMine godoc
// GET /api/v1/me/enrollments
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	enrollments, pagination, err := h.enrollmentService.ListMine(c.Request.Context(), claims.UserID, c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"enrollments": enrollments}, pagination)
}

// GetMine godoc
// GET /api/v1/me/enrollments/:id
// Someone else's enrollment is reported as not found.
func (h *EnrollmentHandler) GetMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.GetMine(c.Request.Context(), claims.UserID, id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// Request godoc
// POST /api/v1/me/enrollments
// Requests a seat in an open intake.
func (h *EnrollmentHandler) Request(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateEnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	enrollment, err := h.enrollmentService.Request(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"enrollment": enrollment})
}

// CancelMine godoc
// POST /api/v1/me/enrollments/:id/cancel
// Only a requested enrollment can be withdrawn by its owner.
func (h *EnrollmentHandler) CancelMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.enrollmentService.CancelOwn(c.Request.Context(), claims.UserID, id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListAdmin godoc
// GET /api/v1/admin/enrollments
func (h *EnrollmentHandler) ListAdmin(c *gin.Context) {
	enrollments, pagination, err := h.enrollmentService.ListAdmin(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"enrollments": enrollments}, pagination)
}

// GetAdmin godoc
// GET /api/v1/admin/enrollments/:id
func (h *EnrollmentHandler) GetAdmin(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.GetAdmin(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// Transition godoc
// POST /api/v1/admin/enrollments/:id/transition
// Moves an enrollment to a new status, syncing seats and payment.
func (h *EnrollmentHandler) Transition(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.TransitionEnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.enrollmentService.Transition(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
