package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/cache"
)

// Handler - HTTP handler for the book catalog
type Handler struct {
	service  service.ServiceInterface
	importer service.ImportServiceInterface
	covers   service.CoverServiceInterface
	cache    cache.Cache
}

// NewHandler - Constructor with DI
func NewHandler(
	svc service.ServiceInterface,
	importer service.ImportServiceInterface,
	covers service.CoverServiceInterface,
	cache cache.Cache,
) *Handler {
	return &Handler{service: svc, importer: importer, covers: covers, cache: cache}
}

const bookDetailCacheTTL = 10 * time.Minute

// ListBooks - GET /v1/books
// Query params: search, genre, sort, page, limit
func (h *Handler) ListBooks(c *gin.Context) {
	req := model.ListBooksRequest{
		Search: c.Query("search"),
		Genre:  c.Query("genre"),
		Sort:   c.DefaultQuery("sort", "newest"),
		Page:   1,
		Limit:  20,
	}

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			req.Page = p
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			req.Limit = l
		}
	}

	books, meta, err := h.service.ListBooks(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidGenre) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalServerError(c, "failed to list books")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Books retrieved successfully",
		model.ListBooksResponse{Books: books, Total: meta.Total}, meta)
}

// GetBookDetail - GET /v1/books/:id
func (h *Handler) GetBookDetail(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid book id")
		return
	}

	// Check cache first
	cacheKey := model.DetailCacheKey(id)
	var cached model.Book
	found, err := h.cache.Get(c.Request.Context(), cacheKey, &cached)
	if found {
		response.Success(c, http.StatusOK, "Book retrieved successfully", &cached)
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("[BookHandler] cache error")
	}

	book, err := h.service.GetBook(c.Request.Context(), utils.ParseStringToUUID(id))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, book, bookDetailCacheTTL); err != nil {
		log.Warn().Err(err).Msg("[BookHandler] failed to cache book detail")
	}

	response.Success(c, http.StatusOK, "Book retrieved successfully", book)
}

// CreateBook - POST /v1/books (admin only, policy middleware enforces it)
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Book created successfully", book)
}

// UpdateBook - PUT /v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid book id")
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), utils.ParseStringToUUID(id), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// Stale detail must not outlive the edit.
	if err := h.cache.Delete(c.Request.Context(), model.DetailCacheKey(id)); err != nil {
		log.Warn().Err(err).Msg("[BookHandler] failed to invalidate book cache")
	}

	response.Success(c, http.StatusOK, "Book updated successfully", book)
}

// DeleteBook - DELETE /v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid book id")
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), utils.ParseStringToUUID(id)); err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.cache.Delete(c.Request.Context(), model.DetailCacheKey(id)); err != nil {
		log.Warn().Err(err).Msg("[BookHandler] failed to invalidate book cache")
	}

	response.Success(c, http.StatusOK, "Book removed from catalog", nil)
}

// PopularBooks - GET /v1/books/popular
func (h *Handler) PopularBooks(c *gin.Context) {
	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	books, err := h.service.PopularBooks(c.Request.Context(), limit)
	if err != nil {
		response.InternalServerError(c, "failed to load popular books")
		return
	}

	response.Success(c, http.StatusOK, "Popular books retrieved successfully", books)
}

// ImportBooks - POST /v1/books/import (admin only)
// Accepts a multipart CSV upload; either every row lands or none do.
func (h *Handler) ImportBooks(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}

	log.Info().
		Str("file_name", file.Filename).
		Int64("file_size", file.Size).
		Msg("[BookHandler] received bulk import request")

	result, err := h.importer.ImportBooks(c.Request.Context(), file)
	if err != nil {
		log.Error().Err(err).Msg("[BookHandler] bulk import failed")
		response.InternalServerError(c, "bulk import failed")
		return
	}

	if !result.Success {
		response.UnprocessableEntity(c, "import rejected", result)
		return
	}

	response.Success(c, http.StatusCreated, "Bulk import completed successfully", result)
}

// ExportBooks - GET /v1/books/export (admin only)
// Streams the current catalog page as an .xlsx download.
func (h *Handler) ExportBooks(c *gin.Context) {
	req := model.ListBooksRequest{
		Search: c.Query("search"),
		Genre:  c.Query("genre"),
		Sort:   c.DefaultQuery("sort", "newest"),
		Page:   1,
		Limit:  100,
	}
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			req.Page = p
		}
	}

	f, err := h.service.ExportBooks(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidGenre) {
			response.BadRequest(c, err.Error())
			return
		}
		log.Error().Err(err).Msg("[BookHandler] export failed")
		response.InternalServerError(c, "failed to export books")
		return
	}

	filename := "catalog-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("[BookHandler] failed to stream workbook")
	}
}

// UploadCover - POST /v1/books/:id/cover (admin only)
func (h *Handler) UploadCover(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid book id")
		return
	}

	file, err := c.FormFile("cover")
	if err != nil {
		response.BadRequest(c, "cover is required (multipart/form-data)")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}

	book, err := h.covers.UploadCover(c.Request.Context(), utils.ParseStringToUUID(id), data)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.cache.Delete(c.Request.Context(), model.DetailCacheKey(id)); err != nil {
		log.Warn().Err(err).Msg("[BookHandler] failed to invalidate book cache")
	}

	response.Success(c, http.StatusOK, "Cover uploaded successfully", book)
}

// RemoveCover - DELETE /v1/books/:id/cover (admin only)
func (h *Handler) RemoveCover(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid book id")
		return
	}

	if err := h.covers.RemoveCover(c.Request.Context(), utils.ParseStringToUUID(id)); err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.cache.Delete(c.Request.Context(), model.DetailCacheKey(id)); err != nil {
		log.Warn().Err(err).Msg("[BookHandler] failed to invalidate book cache")
	}

	response.Success(c, http.StatusOK, "Cover removed", nil)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrBookNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrISBNAlreadyExists),
		errors.Is(err, model.ErrBookInactive),
		errors.Is(err, model.ErrCopiesInUse):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidGenre),
		errors.Is(err, model.ErrInvalidCover):
		response.BadRequest(c, err.Error())
	default:
		var vErrs validation.Errors
		if errors.As(err, &vErrs) {
			response.UnprocessableEntity(c, "validation failed", vErrs)
			return
		}
		log.Error().Err(err).Msg("[BookHandler] unexpected error")
		response.InternalServerError(c, "internal server error")
	}
}
