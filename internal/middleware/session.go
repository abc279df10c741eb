package middleware

import (
	"net/http"

	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// sessionActive rejects tokens whose jti was signed out, and tokens issued
// before the user's sessions were revoked by a role change or deletion.
// The request is aborted when it returns false.
func sessionActive(c *gin.Context, tokens TokenValidator, claims *service.Claims) bool {
	ctx := c.Request.Context()
	revoked, err := tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		_ = c.Error(err)
		response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
		return false
	}
	if !revoked {
		cutoff, err := tokens.RevokedBefore(ctx, claims.UserID)
		if err != nil {
			_ = c.Error(err)
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return false
		}
		revoked = claims.IssuedBefore(cutoff)
	}
	if revoked {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRevoked)
		return false
	}
	return true
}
