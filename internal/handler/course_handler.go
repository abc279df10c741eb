package handler

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/careacademy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// CourseHandler handles admin course management.
type CourseHandler struct {
	catalogService *service.CatalogService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(catalogService *service.CatalogService) *CourseHandler {
	return &CourseHandler{catalogService: catalogService}
}

// ListCourses godoc
// GET /api/v1/admin/courses
// Supports search, category_id and is_published filters.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, pagination, err := h.catalogService.ListCourses(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// GetCourse godoc
// GET /api/v1/admin/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	course, err := h.catalogService.GetCourse(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/v1/admin/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.catalogService.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse godoc
// PUT /api/v1/admin/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.catalogService.UpdateCourse(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/v1/admin/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCourse(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "course deleted successfully"})
}
