package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/dashboard/model"
	"library-backend/internal/domains/dashboard/service"
	"library-backend/internal/shared/response"
	"library-backend/pkg/cache"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 5 * time.Minute
)

// Handler - HTTP handler for the admin dashboard
type Handler struct {
	service service.ServiceInterface
	cache   cache.Cache
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface, cache cache.Cache) *Handler {
	return &Handler{service: service, cache: cache}
}

// GetDashboard - GET /v1/admin/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	var cached model.DashboardStats
	found, err := h.cache.Get(c.Request.Context(), statsCacheKey, &cached)
	if found {
		response.Success(c, http.StatusOK, "Dashboard retrieved successfully", &cached)
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("[DashboardHandler] cache error")
	}

	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("[DashboardHandler] failed to build stats")
		response.InternalServerError(c, "failed to load dashboard")
		return
	}

	if err := h.cache.Set(c.Request.Context(), statsCacheKey, stats, statsCacheTTL); err != nil {
		log.Warn().Err(err).Msg("[DashboardHandler] failed to cache stats")
	}

	response.Success(c, http.StatusOK, "Dashboard retrieved successfully", stats)
}
