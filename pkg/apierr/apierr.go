// Package apierr standardizes HTTP error responses. Every failure carries a
// short stable code for machine handling next to a safe human-readable
// message; internal details never leak into response bodies.
package apierr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stable error codes returned in response bodies.
const (
	CodeInvalidInput           = "invalid_input"
	CodeDuplicateUser          = "duplicate_user"
	CodeUserNotFound           = "user_not_found"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeMissingCredentials     = "missing_credentials"
	CodeInvalidToken           = "invalid_token"
	CodeTokenExpired           = "token_expired"
	CodeTokenRevoked           = "token_revoked"
	CodeAccessTokenRequired    = "access_token_required"
	CodeRefreshTokenRequired   = "refresh_token_required"
	CodeInsufficientPermission = "insufficient_permission"
	CodeStoreUnavailable       = "store_unavailable"
	CodeNotFound               = "not_found"
	CodeInternal               = "internal_error"
)

// Fail writes an error response and aborts the request.
func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

// Internal maps an unexpected failure to a generic 500 without leaking
// internal detail.
func Internal(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, CodeInternal, "something went wrong")
}

// StoreUnavailable reports a backing-store outage as a distinct 503.
func StoreUnavailable(c *gin.Context) {
	Fail(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "backing store unavailable")
}
