package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookly/bookly/internal/blocklist"
	"github.com/bookly/bookly/internal/books"
	"github.com/bookly/bookly/internal/reviews"
	"github.com/bookly/bookly/internal/tokens"
	"github.com/bookly/bookly/internal/users"
	"github.com/bookly/bookly/pkg/apierr"
	"github.com/bookly/bookly/pkg/logger"
	"github.com/bookly/bookly/pkg/middleware"
)

// ReviewsHandler serves review creation and listing per book.
type ReviewsHandler struct {
	svc       *reviews.Service
	usersSvc  *users.Service
	codec     *tokens.Codec
	blocklist blocklist.Store
}

func NewReviewsHandler(r *reviews.Service, u *users.Service, codec *tokens.Codec, bl blocklist.Store) *ReviewsHandler {
	return &ReviewsHandler{svc: r, usersSvc: u, codec: codec, blocklist: bl}
}

func (h *ReviewsHandler) Register(rg *gin.RouterGroup) {
	authed := rg.Group("/books/:id/reviews",
		middleware.RequireToken(h.codec, h.blocklist, tokens.KindAccess),
		middleware.RequireRole(h.usersSvc, "admin", "user"),
	)
	authed.POST("", h.Create)
	authed.GET("", h.ListForBook)
}

func (h *ReviewsHandler) Create(c *gin.Context) {
	var in reviews.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeInvalidInput, err.Error())
		return
	}
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		apierr.Internal(c)
		return
	}
	rv, err := h.svc.AddToBook(c.Request.Context(), claims.User.Email, c.Param("id"), in)
	if err != nil {
		h.reviewError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}

func (h *ReviewsHandler) ListForBook(c *gin.Context) {
	list, err := h.svc.ListForBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.reviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReviewsHandler) reviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reviews.ErrInvalidRating):
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeInvalidInput, err.Error())
	case errors.Is(err, books.ErrNotFound):
		apierr.Fail(c, http.StatusNotFound, apierr.CodeNotFound, "book not found")
	case errors.Is(err, users.ErrNotFound):
		apierr.Fail(c, http.StatusNotFound, apierr.CodeUserNotFound, "user not found")
	default:
		logger.Errorf("reviews: operation failed: %v", err)
		apierr.StoreUnavailable(c)
	}
}
