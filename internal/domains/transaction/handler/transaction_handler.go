package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/transaction/model"
	"library-backend/internal/domains/transaction/service"
	usermodel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

// Handler - HTTP handler for the loan lifecycle
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Issue - POST /v1/transactions/issue (admin)
func (h *Handler) Issue(c *gin.Context) {
	staffID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	t, err := h.service.Issue(c.Request.Context(), req, staffID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Book issued successfully", t)
}

// Return - POST /v1/transactions/:id/return (admin)
func (h *Handler) Return(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid transaction id")
		return
	}

	result, err := h.service.Return(c.Request.Context(), utils.ParseStringToUUID(id))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Book returned successfully", result)
}

// Renew - POST /v1/transactions/:id/renew (borrower self or admin)
func (h *Handler) Renew(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid transaction id")
		return
	}

	isAdmin := middleware.GetRole(c) == usermodel.RoleAdmin
	t, err := h.service.Renew(c.Request.Context(), utils.ParseStringToUUID(id), actorID, isAdmin)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Loan renewed successfully", t)
}

// GetTransaction - GET /v1/transactions/:id
func (h *Handler) GetTransaction(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid transaction id")
		return
	}

	t, err := h.service.GetTransaction(c.Request.Context(), utils.ParseStringToUUID(id))
	if err != nil {
		h.writeError(c, err)
		return
	}

	// Members may only see their own loans.
	if middleware.GetRole(c) != usermodel.RoleAdmin {
		userID, ok := middleware.GetUserID(c)
		if !ok || t.UserID != userID {
			response.Forbidden(c, model.ErrNotTransactionOwner.Error())
			return
		}
	}

	response.Success(c, http.StatusOK, "Transaction retrieved successfully", t)
}

// ListTransactions - GET /v1/transactions (admin)
func (h *Handler) ListTransactions(c *gin.Context) {
	req := model.ListTransactionsRequest{
		UserID: c.Query("user_id"),
		BookID: c.Query("book_id"),
		Status: c.Query("status"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 20),
	}

	transactions, total, err := h.service.ListTransactions(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	meta := &response.Meta{Page: req.Page, Limit: req.Limit, Total: total}
	response.SuccessWithMeta(c, http.StatusOK, "Transactions retrieved successfully", transactions, meta)
}

// ListMyTransactions - GET /v1/transactions/me
func (h *Handler) ListMyTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 20)

	transactions, total, err := h.service.ListMyTransactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	meta := &response.Meta{Page: page, Limit: limit, Total: total}
	response.SuccessWithMeta(c, http.StatusOK, "Transactions retrieved successfully", transactions, meta)
}

func parseIntQuery(c *gin.Context, key string, def int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrTransactionNotFound),
		errors.Is(err, bookmodel.ErrBookNotFound),
		errors.Is(err, usermodel.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrBookUnavailable),
		errors.Is(err, model.ErrBorrowerOverdue),
		errors.Is(err, model.ErrBorrowCapReached),
		errors.Is(err, model.ErrAlreadyReturned),
		errors.Is(err, model.ErrRenewalLimit),
		errors.Is(err, model.ErrNotRenewable),
		errors.Is(err, model.ErrRenewWhileOverdue),
		errors.Is(err, bookmodel.ErrBookInactive):
		response.Conflict(c, err.Error())
	case errors.Is(err, usermodel.ErrUserInactive),
		errors.Is(err, usermodel.ErrUserNotVerified),
		errors.Is(err, model.ErrNotTransactionOwner):
		response.Forbidden(c, err.Error())
	default:
		var vErrs validation.Errors
		if errors.As(err, &vErrs) {
			response.UnprocessableEntity(c, "validation failed", vErrs)
			return
		}
		log.Error().Err(err).Msg("[TransactionHandler] unexpected error")
		response.InternalServerError(c, "internal server error")
	}
}
