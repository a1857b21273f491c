package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/service"
)

type StatsHandler struct {
	svc *service.AnalyticsService
}

func NewStatsHandler(s *service.AnalyticsService) *StatsHandler {
	return &StatsHandler{svc: s}
}

// GetRevenueStats GET /stats/revenue?from=...&to=...
func (h *StatsHandler) GetRevenueStats(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		common.RespondBadRequest(c, "параметр from должен быть в формате RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		common.RespondBadRequest(c, "параметр to должен быть в формате RFC3339")
		return
	}

	stats, err := h.svc.GetRevenueStats(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetDashboardStats GET /stats/dashboard
func (h *StatsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.svc.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
