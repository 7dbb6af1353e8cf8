package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookly/bookly/internal/blocklist"
	"github.com/bookly/bookly/internal/books"
	"github.com/bookly/bookly/internal/tags"
	"github.com/bookly/bookly/internal/tokens"
	"github.com/bookly/bookly/internal/users"
	"github.com/bookly/bookly/pkg/apierr"
	"github.com/bookly/bookly/pkg/logger"
	"github.com/bookly/bookly/pkg/middleware"
)

// AddTagsRequest names the tags to attach to a book.
type AddTagsRequest struct {
	Tags []string `json:"tags" binding:"required,min=1"`
}

// TagsHandler serves the tag catalog and book tagging.
type TagsHandler struct {
	svc       *tags.Service
	usersSvc  *users.Service
	codec     *tokens.Codec
	blocklist blocklist.Store
}

func NewTagsHandler(t *tags.Service, u *users.Service, codec *tokens.Codec, bl blocklist.Store) *TagsHandler {
	return &TagsHandler{svc: t, usersSvc: u, codec: codec, blocklist: bl}
}

func (h *TagsHandler) Register(rg *gin.RouterGroup) {
	authed := rg.Group("",
		middleware.RequireToken(h.codec, h.blocklist, tokens.KindAccess),
		middleware.RequireRole(h.usersSvc, "admin", "user"),
	)
	authed.GET("/tags", h.List)
	authed.POST("/books/:id/tags", h.AddToBook)
	authed.DELETE("/books/:id/tags/:name", h.RemoveFromBook)
}

func (h *TagsHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("tags: list failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TagsHandler) AddToBook(c *gin.Context) {
	var req AddTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeInvalidInput, err.Error())
		return
	}
	book, err := h.svc.AddToBook(c.Request.Context(), c.Param("id"), req.Tags)
	if err != nil {
		h.tagError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *TagsHandler) RemoveFromBook(c *gin.Context) {
	book, err := h.svc.RemoveFromBook(c.Request.Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		h.tagError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *TagsHandler) tagError(c *gin.Context, err error) {
	if errors.Is(err, books.ErrNotFound) {
		apierr.Fail(c, http.StatusNotFound, apierr.CodeNotFound, "book not found")
		return
	}
	logger.Errorf("tags: operation failed: %v", err)
	apierr.StoreUnavailable(c)
}
