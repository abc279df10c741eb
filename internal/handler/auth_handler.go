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

// AuthHandler handles sign-up, sign-in and the caller's own profile.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp godoc
// POST /api/v1/auth/signup
// Creates a regular user account and returns an access token.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// SignIn godoc
// POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// SignOut godoc
// POST /api/v1/auth/signout
// Revokes the token used for this request.
func (h *AuthHandler) SignOut(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.SignOut(c.Request.Context(), claims); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	profile, err := h.authService.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// UpdateMe godoc
// PUT /api/v1/auth/me
// Updates the caller's name and phone.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile, err := h.authService.UpdateMe(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}
