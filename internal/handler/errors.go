package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// errorMappings translates domain errors to API errors. The first match
// wins; anything unmatched is a 500.
var errorMappings = []errorMapping{
	{repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{repository.ErrDuplicate, http.StatusConflict, response.ErrConflict},
	{repository.ErrInUse, http.StatusConflict, response.ErrDependencyExists},
	{repository.ErrInvalidReference, http.StatusBadRequest, response.ErrInvalidReference},

	{datatable.ErrInvalidSort, http.StatusBadRequest, response.ErrInvalidQuery},
	{datatable.ErrInvalidFilter, http.StatusBadRequest, response.ErrInvalidQuery},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{service.ErrCannotDeleteSelf, http.StatusForbidden, response.ErrActionForbidden},
	{service.ErrInvalidSettingKey, http.StatusBadRequest, response.ErrValidation},
	{service.ErrUnsupportedFileType, http.StatusBadRequest, response.ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},

	{model.ErrIntakeDates, http.StatusBadRequest, response.ErrInvalidIntakeDates},
	{model.ErrRegistrationWindow, http.StatusBadRequest, response.ErrInvalidIntakeDates},
	{model.ErrCapacityBelowRegistered, http.StatusConflict, response.ErrCapacityBelowRegistered},
	{model.ErrIntakeFull, http.StatusConflict, response.ErrIntakeFull},
	{model.ErrIntakeClosed, http.StatusConflict, response.ErrIntakeClosed},
	{model.ErrAlreadyEnrolled, http.StatusConflict, response.ErrAlreadyEnrolled},
	{model.ErrInvalidTransition, http.StatusConflict, response.ErrInvalidTransition},
	{model.ErrPaymentLocked, http.StatusConflict, response.ErrPaymentLocked},
	{model.ErrPaymentNotPaid, http.StatusConflict, response.ErrPaymentNotPaid},
	{model.ErrRefundExceedsPayment, http.StatusBadRequest, response.ErrRefundExceedsPayment},
	{model.ErrInvalidRefundTransition, http.StatusConflict, response.ErrInvalidRefundTransition},
}

// fail writes the API error for err. Unknown errors are attached to the
// context so the access log records them.
func fail(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}
	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// uuidParam parses a UUID path parameter, writing INVALID_ID on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// intParam parses a positive integer path parameter.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
