package handler

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/careacademy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles admin course category management.
type CategoryHandler struct {
	catalogService *service.CatalogService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(catalogService *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalogService: catalogService}
}

// ListCategories godoc
// GET /api/v1/admin/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, pagination, err := h.catalogService.ListCategories(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"categories": categories}, pagination)
}

// GetCategory godoc
// GET /api/v1/admin/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"category": category})
}

// CreateCategory godoc
// POST /api/v1/admin/categories
// The slug is derived from the name when omitted.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req model.CategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory godoc
// PUT /api/v1/admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	var req model.CategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"category": category})
}

// DeleteCategory godoc
// DELETE /api/v1/admin/categories/:id
// Rejected with DEPENDENCY_EXISTS while courses still reference it.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "category deleted successfully"})
}
