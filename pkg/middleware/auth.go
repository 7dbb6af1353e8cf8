package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookly/bookly/internal/blocklist"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/tokens"
	"github.com/bookly/bookly/internal/users"
	"github.com/bookly/bookly/pkg/apierr"
)

// Gin context keys populated by the auth middlewares.
const (
	ClaimsContextKey = "claims"
	UserContextKey   = "user"
)

// RequireToken returns a Gin middleware enforcing the session-guard state
// machine: bearer extraction, codec verification, revocation lookup and
// token-kind check. Decoded claims are exposed to downstream handlers under
// ClaimsContextKey.
//
// A revocation-store outage aborts the request with 503; it is never
// treated as "not revoked".
func RequireToken(codec *tokens.Codec, store blocklist.Store, kind tokens.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			apierr.Fail(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, "missing Authorization header")
			return
		}
		scheme, raw, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			apierr.Fail(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, "invalid Authorization header")
			return
		}

		claims, err := codec.Verify(raw)
		if err != nil {
			if errors.Is(err, tokens.ErrExpired) {
				apierr.Fail(c, http.StatusUnauthorized, apierr.CodeTokenExpired, "token has expired")
				return
			}
			apierr.Fail(c, http.StatusUnauthorized, apierr.CodeInvalidToken, "invalid token")
			return
		}

		revoked, err := store.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			apierr.StoreUnavailable(c)
			return
		}
		if revoked {
			apierr.Fail(c, http.StatusUnauthorized, apierr.CodeTokenRevoked, "token has been revoked")
			return
		}

		if claims.Kind() != kind {
			if kind == tokens.KindRefresh {
				apierr.Fail(c, http.StatusForbidden, apierr.CodeRefreshTokenRequired, "a refresh token is required")
			} else {
				apierr.Fail(c, http.StatusForbidden, apierr.CodeAccessTokenRequired, "an access token is required")
			}
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// RequireRole is the composable role gate. It must run after RequireToken:
// it loads the user record for the claimed identity, rejects roles outside
// the allowed set and exposes the resolved user under UserContextKey.
func RequireRole(svc *users.Service, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			apierr.Fail(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, "authentication required")
			return
		}
		user, err := svc.GetByEmail(c.Request.Context(), claims.User.Email)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				apierr.Fail(c, http.StatusNotFound, apierr.CodeUserNotFound, "user no longer exists")
				return
			}
			apierr.StoreUnavailable(c)
			return
		}
		if !slices.Contains(allowed, user.Role) {
			apierr.Fail(c, http.StatusForbidden, apierr.CodeInsufficientPermission, "insufficient permission")
			return
		}
		c.Set(UserContextKey, user)
		c.Next()
	}
}

// ClaimsFrom returns the verified claims stored by RequireToken, or nil.
func ClaimsFrom(c *gin.Context) *tokens.Claims {
	v, ok := c.Get(ClaimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*tokens.Claims)
	return claims
}

// UserFrom returns the user resolved by RequireRole, or nil.
func UserFrom(c *gin.Context) *models.User {
	v, ok := c.Get(UserContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
