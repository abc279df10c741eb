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

// ContactHandler handles the admin inbox of contact messages.
type ContactHandler struct {
	contactService *service.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ListMessages godoc
// GET /api/v1/admin/contact-messages
func (h *ContactHandler) ListMessages(c *gin.Context) {
	messages, pagination, err := h.contactService.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"messages": messages}, pagination)
}

// GetMessage godoc
// GET /api/v1/admin/contact-messages/:id
func (h *ContactHandler) GetMessage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// Reply godoc
// POST /api/v1/admin/contact-messages/:id/reply
// Emails the reply to the sender and stores it on the message.
func (h *ContactHandler) Reply(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.ContactReplyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.contactService.Reply(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}

// Archive godoc
// PUT /api/v1/admin/contact-messages/:id/archive
func (h *ContactHandler) Archive(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.contactService.Archive(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg})
}
