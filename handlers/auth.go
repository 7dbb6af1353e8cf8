package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookly/bookly/internal/blocklist"
	"github.com/bookly/bookly/internal/config"
	"github.com/bookly/bookly/internal/tokens"
	"github.com/bookly/bookly/internal/users"
	"github.com/bookly/bookly/pkg/apierr"
	"github.com/bookly/bookly/pkg/cryptox"
	"github.com/bookly/bookly/pkg/logger"
	"github.com/bookly/bookly/pkg/metrics"
	"github.com/bookly/bookly/pkg/middleware"
)

// SignupRequest carries the account-creation fields.
type SignupRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest carries the password-login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies for the auth endpoints.
type AuthHandler struct {
	cfg       *config.Config
	usersSvc  *users.Service
	codec     *tokens.Codec
	blocklist blocklist.Store
}

func NewAuthHandler(cfg *config.Config, u *users.Service, codec *tokens.Codec, bl blocklist.Store) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, codec: codec, blocklist: bl}
}

// Register routes under /auth. Refresh, logout and me sit behind the
// session guard with the token kind each of them requires.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/signup", h.Signup)
	a.POST("/login", h.Login)
	a.GET("/refresh_token",
		middleware.RequireToken(h.codec, h.blocklist, tokens.KindRefresh),
		h.Refresh)
	a.GET("/logout",
		middleware.RequireToken(h.codec, h.blocklist, tokens.KindAccess),
		h.Logout)
	a.GET("/me",
		middleware.RequireToken(h.codec, h.blocklist, tokens.KindAccess),
		middleware.RequireRole(h.usersSvc, "admin", "user"),
		h.Me)
}

// Signup creates a new account. An existing account with the same email is
// reported as a conflict; the plaintext password goes straight into the
// users service and is never stored or logged.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeInvalidInput, err.Error())
		return
	}

	exists, err := h.usersSvc.Exists(c.Request.Context(), req.Email)
	if err != nil {
		logger.Errorf("signup: duplicate check failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}
	if exists {
		apierr.Fail(c, http.StatusForbidden, apierr.CodeDuplicateUser, "user with this email already exists")
		return
	}

	u, err := h.usersSvc.Register(c.Request.Context(), users.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		logger.Errorf("signup: register failed: %v", err)
		apierr.Internal(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "account created, check email to verify your account",
		"user":    u,
	})
}

// Login verifies the credentials and issues an access/refresh token pair.
// An unknown email and a wrong password are reported distinctly.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeInvalidInput, err.Error())
		return
	}

	u, err := h.usersSvc.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			apierr.Fail(c, http.StatusNotFound, apierr.CodeUserNotFound, "user not found")
			return
		}
		logger.Errorf("login: user lookup failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}

	if !cryptox.VerifyPassword(req.Password, u.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		apierr.Fail(c, http.StatusUnauthorized, apierr.CodeInvalidCredentials, "invalid email or password")
		return
	}

	subject := tokens.UserClaims{UID: u.UID, Email: u.Email, Role: u.Role}
	access, err := h.codec.Issue(subject, tokens.KindAccess, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("login: access token issue failed: %v", err)
		apierr.Internal(c)
		return
	}
	refresh, err := h.codec.Issue(subject, tokens.KindRefresh, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("login: refresh token issue failed: %v", err)
		apierr.Internal(c)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	metrics.TokensIssued.WithLabelValues("access").Inc()
	metrics.TokensIssued.WithLabelValues("refresh").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":       "login successful",
		"access_token":  access,
		"refresh_token": refresh,
		"user": gin.H{
			"uid":   u.UID,
			"email": u.Email,
		},
	})
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// guard already verified signature, expiry, revocation and kind; the
// explicit expiry re-check below keeps the invariant local and covers
// clock movement between guard and handler.
func (h *AuthHandler) Refresh(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		apierr.Fail(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, "authentication required")
		return
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeTokenExpired, "invalid or expired token")
		return
	}

	access, err := h.codec.Issue(claims.User, tokens.KindAccess, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("refresh: access token issue failed: %v", err)
		apierr.Internal(c)
		return
	}
	metrics.TokensIssued.WithLabelValues("access").Inc()

	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// Logout revokes the presented access token. The revocation entry only
// needs to live as long as the token itself; the store additionally caps
// the TTL. The refresh token issued alongside stays valid until it
// expires, so clients should discard it on logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		apierr.Fail(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, "authentication required")
		return
	}

	if err := h.blocklist.Revoke(c.Request.Context(), claims.ID, claims.RemainingLifetime()); err != nil {
		logger.Errorf("logout: revoke failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}
	metrics.TokensRevoked.Inc()

	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Me returns the authenticated user's profile as resolved by the role gate.
func (h *AuthHandler) Me(c *gin.Context) {
	u := middleware.UserFrom(c)
	if u == nil {
		apierr.Internal(c)
		return
	}
	c.JSON(http.StatusOK, u)
}
