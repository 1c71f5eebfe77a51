package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

// Handler - HTTP handler for accounts and authentication
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// =====================================================
// AUTH ENDPOINTS (public)
// =====================================================

// Register - POST /v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated,
		"Registration successful. Please verify your email or phone.", user)
}

// VerifyEmail - GET /v1/auth/verify-email?token=...
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.BadRequest(c, "verification token is required")
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), token); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Email verified successfully", nil)
}

// ResendVerificationEmail - POST /v1/auth/verify-email/resend
func (h *Handler) ResendVerificationEmail(c *gin.Context) {
	var req model.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.ResendVerificationEmail(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Verification email sent", nil)
}

// RequestPhoneOTP - POST /v1/auth/otp/request
func (h *Handler) RequestPhoneOTP(c *gin.Context) {
	var req model.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.RequestPhoneOTP(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Verification code sent", nil)
}

// VerifyPhoneOTP - POST /v1/auth/otp/verify
func (h *Handler) VerifyPhoneOTP(c *gin.Context) {
	var req model.VerifyPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.VerifyPhoneOTP(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Phone verified successfully", nil)
}

// Login - POST /v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", resp)
}

// RefreshToken - POST /v1/auth/refresh
func (h *Handler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed", resp)
}

// =====================================================
// SELF SERVICE (authenticated)
// =====================================================

// GetProfile - GET /v1/users/me
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved successfully", user)
}

// UpdateProfile - PUT /v1/users/me
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword - PUT /v1/users/me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// =====================================================
// ADMIN ENDPOINTS
// =====================================================

// ListUsers - GET /v1/users
func (h *Handler) ListUsers(c *gin.Context) {
	req := model.ListUsersRequest{
		Search: c.Query("search"),
		Role:   c.Query("role"),
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

	users, total, err := h.service.ListUsers(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	meta := &response.Meta{Page: req.Page, Limit: req.Limit, Total: total}
	response.SuccessWithMeta(c, http.StatusOK, "Users retrieved successfully", users, meta)
}

// GetUser - GET /v1/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), utils.ParseStringToUUID(id))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User retrieved successfully", user)
}

// UpdateRole - PUT /v1/users/:id/role
func (h *Handler) UpdateRole(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req model.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.UpdateRole(c.Request.Context(), utils.ParseStringToUUID(id), req); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Role updated successfully", nil)
}

// UpdateStatus - PUT /v1/users/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), utils.ParseStringToUUID(id), req); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Status updated successfully", nil)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrEmailAlreadyExists),
		errors.Is(err, model.ErrPhoneAlreadyExists),
		errors.Is(err, model.ErrSamePassword),
		errors.Is(err, model.ErrAlreadyVerified),
		errors.Is(err, model.ErrUserHasOpenLoans):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrInvalidToken),
		errors.Is(err, model.ErrInvalidOTP):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, model.ErrUserInactive),
		errors.Is(err, model.ErrUserNotVerified):
		response.Forbidden(c, err.Error())
	case errors.Is(err, model.ErrTooManyOTPRequests):
		response.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", err.Error())
	case errors.Is(err, model.ErrInvalidRole):
		response.BadRequest(c, err.Error())
	default:
		var vErrs validation.Errors
		if errors.As(err, &vErrs) {
			response.UnprocessableEntity(c, "validation failed", vErrs)
			return
		}
		log.Error().Err(err).Msg("[UserHandler] unexpected error")
		response.InternalServerError(c, "internal server error")
	}
}
