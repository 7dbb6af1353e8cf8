package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookly/bookly/internal/blocklist"
	"github.com/bookly/bookly/internal/books"
	"github.com/bookly/bookly/internal/storage"
	"github.com/bookly/bookly/internal/tokens"
	"github.com/bookly/bookly/internal/users"
	"github.com/bookly/bookly/pkg/apierr"
	"github.com/bookly/bookly/pkg/logger"
	"github.com/bookly/bookly/pkg/middleware"
)

// BooksHandler serves the book catalog. covers may be nil when no object
// storage is configured; the cover endpoints then report 503.
type BooksHandler struct {
	svc       *books.Service
	usersSvc  *users.Service
	codec     *tokens.Codec
	blocklist blocklist.Store
	covers    *storage.CoverStorage
}

func NewBooksHandler(b *books.Service, u *users.Service, codec *tokens.Codec, bl blocklist.Store, covers *storage.CoverStorage) *BooksHandler {
	return &BooksHandler{svc: b, usersSvc: u, codec: codec, blocklist: bl, covers: covers}
}

// Register mounts the catalog routes. Every route requires an access token
// and a known user with an allowed role.
func (h *BooksHandler) Register(rg *gin.RouterGroup) {
	authed := rg.Group("",
		middleware.RequireToken(h.codec, h.blocklist, tokens.KindAccess),
		middleware.RequireRole(h.usersSvc, "admin", "user"),
	)

	b := authed.Group("/books")
	b.GET("", h.List)
	b.POST("", h.Create)
	b.GET("/:id", h.Get)
	b.PATCH("/:id", h.Update)
	b.DELETE("/:id", h.Delete)
	b.POST("/:id/cover", h.UploadCover)
	b.GET("/:id/cover", h.DownloadCover)

	authed.GET("/users/:uid/books", h.ListByUser)
}

func (h *BooksHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("books: list failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BooksHandler) ListByUser(c *gin.Context) {
	list, err := h.svc.ListByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		logger.Errorf("books: list by user failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create adds a book owned by the authenticated user.
func (h *BooksHandler) Create(c *gin.Context) {
	var in books.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeInvalidInput, err.Error())
		return
	}
	owner := middleware.UserFrom(c)
	if owner == nil {
		apierr.Internal(c)
		return
	}
	book, err := h.svc.Create(c.Request.Context(), in, owner.UID)
	if err != nil {
		logger.Errorf("books: create failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *BooksHandler) Get(c *gin.Context) {
	book, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.bookError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BooksHandler) Update(c *gin.Context) {
	var upd books.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeInvalidInput, err.Error())
		return
	}
	book, err := h.svc.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.bookError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BooksHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.bookError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadCover stores the multipart "cover" file for a book and records the
// object key on the record.
func (h *BooksHandler) UploadCover(c *gin.Context) {
	if h.covers == nil {
		apierr.Fail(c, http.StatusServiceUnavailable, apierr.CodeStoreUnavailable, "cover storage not configured")
		return
	}
	uid := c.Param("id")
	if _, err := h.svc.Get(c.Request.Context(), uid); err != nil {
		h.bookError(c, err)
		return
	}

	fh, err := c.FormFile("cover")
	if err != nil {
		apierr.Fail(c, http.StatusBadRequest, apierr.CodeInvalidInput, "multipart field 'cover' is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		apierr.Internal(c)
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.covers.Upload(c.Request.Context(), uid, f, fh.Size, contentType); err != nil {
		logger.Errorf("books: cover upload failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}
	if err := h.svc.SetCoverKey(c.Request.Context(), uid, h.covers.Key(uid)); err != nil {
		h.bookError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "cover uploaded"})
}

// DownloadCover streams the stored cover back to the client.
func (h *BooksHandler) DownloadCover(c *gin.Context) {
	if h.covers == nil {
		apierr.Fail(c, http.StatusServiceUnavailable, apierr.CodeStoreUnavailable, "cover storage not configured")
		return
	}
	uid := c.Param("id")
	book, err := h.svc.Get(c.Request.Context(), uid)
	if err != nil {
		h.bookError(c, err)
		return
	}
	if book.CoverKey == "" {
		apierr.Fail(c, http.StatusNotFound, apierr.CodeNotFound, "book has no cover")
		return
	}

	obj, err := h.covers.Download(c.Request.Context(), uid)
	if err != nil {
		logger.Errorf("books: cover download failed: %v", err)
		apierr.StoreUnavailable(c)
		return
	}
	defer obj.Close()

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj); err != nil {
		logger.Errorf("books: cover stream failed: %v", err)
	}
}

// bookError maps service errors for a single-book operation.
func (h *BooksHandler) bookError(c *gin.Context, err error) {
	if errors.Is(err, books.ErrNotFound) {
		apierr.Fail(c, http.StatusNotFound, apierr.CodeNotFound, "book not found")
		return
	}
	logger.Errorf("books: operation failed: %v", err)
	apierr.StoreUnavailable(c)
}
