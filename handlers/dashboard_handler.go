package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/studyhub/studyhub-backend/middleware"
	"github.com/studyhub/studyhub-backend/services/dashboard"
	"github.com/studyhub/studyhub-backend/utils"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	service *dashboard.Service
	logger  *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service *dashboard.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// HandleStats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, stats)
}
