package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/service"
)

type PayoutHandler struct {
	svc  *service.PayoutService
	auth *service.AuthService
}

func NewPayoutHandler(s *service.PayoutService, auth *service.AuthService) *PayoutHandler {
	return &PayoutHandler{svc: s, auth: auth}
}

// GeneratePayouts POST /payouts/generate
func (h *PayoutHandler) GeneratePayouts(c *gin.Context) {
	var req struct {
		PeriodStart time.Time `json:"period_start" binding:"required"`
		PeriodEnd   time.Time `json:"period_end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	adminID, adminName, err := currentActor(c, h.auth)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	payouts, err := h.svc.GeneratePayouts(c.Request.Context(), req.PeriodStart, req.PeriodEnd, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payouts)
}

// ListPayouts GET /payouts
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	payouts, err := h.svc.ListPayouts(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, payouts, limit, offset)
}

// GetPayout GET /payouts/:id
func (h *PayoutHandler) GetPayout(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payout, err := h.svc.GetPayout(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// MarkProcessing POST /payouts/:id/process
func (h *PayoutHandler) MarkProcessing(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	adminID, adminName, err := currentActor(c, h.auth)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	payout, err := h.svc.MarkProcessing(c.Request.Context(), id, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// MarkCompleted POST /payouts/:id/complete
func (h *PayoutHandler) MarkCompleted(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	adminID, adminName, err := currentActor(c, h.auth)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	payout, err := h.svc.MarkCompleted(c.Request.Context(), id, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}
