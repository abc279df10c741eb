package handler

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/careacademy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// PublicHandler serves the anonymous catalog and the contact form.
type PublicHandler struct {
	catalogService *service.CatalogService
	contactService *service.ContactService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(catalogService *service.CatalogService, contactService *service.ContactService) *PublicHandler {
	return &PublicHandler{catalogService: catalogService, contactService: contactService}
}

// ListCategories godoc
// GET /api/v1/public/categories
func (h *PublicHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.PublicCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

// ListCourses godoc
// GET /api/v1/public/courses?category=<slug>
// Lists published courses.
func (h *PublicHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalogService.PublicCourses(c.Request.Context(), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetCourse godoc
// GET /api/v1/public/courses/:slug
// Returns a published course with rendered description and its open intakes.
func (h *PublicHandler) GetCourse(c *gin.Context) {
	course, err := h.catalogService.PublicCourse(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// SubmitContact godoc
// POST /api/v1/public/contact
func (h *PublicHandler) SubmitContact(c *gin.Context) {
	var req model.ContactRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.contactService.Submit(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": msg.ID, "status": msg.Status})
}
