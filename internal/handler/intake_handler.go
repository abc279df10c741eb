package handler

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/careacademy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// IntakeHandler handles admin intake scheduling.
type IntakeHandler struct {
	intakeService *service.IntakeService
}

// NewIntakeHandler creates a new IntakeHandler.
func NewIntakeHandler(intakeService *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

// ListIntakes godoc
// GET /api/v1/admin/intakes
func (h *IntakeHandler) ListIntakes(c *gin.Context) {
	intakes, pagination, err := h.intakeService.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"intakes": intakes}, pagination)
}

// GetIntake godoc
// GET /api/v1/admin/intakes/:id
func (h *IntakeHandler) GetIntake(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	intake, err := h.intakeService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"intake": intake})
}

// CreateIntake godoc
// POST /api/v1/admin/intakes
func (h *IntakeHandler) CreateIntake(c *gin.Context) {
	var req model.IntakeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	intake, err := h.intakeService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"intake": intake})
}

// UpdateIntake godoc
// PUT /api/v1/admin/intakes/:id
// Capacity may not drop below the number of seats already taken.
func (h *IntakeHandler) UpdateIntake(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.IntakeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	intake, err := h.intakeService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"intake": intake})
}

// DeleteIntake godoc
// DELETE /api/v1/admin/intakes/:id
func (h *IntakeHandler) DeleteIntake(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.intakeService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "intake deleted successfully"})
}
