package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/service"
)

type DisputeHandler struct {
	svc        *service.DisputeService
	moderation *service.ModerationService
	auth       *service.AuthService
}

func NewDisputeHandler(s *service.DisputeService, moderation *service.ModerationService, auth *service.AuthService) *DisputeHandler {
	return &DisputeHandler{svc: s, moderation: moderation, auth: auth}
}

// CreateDispute POST /disputes
func (h *DisputeHandler) CreateDispute(c *gin.Context) {
	var req struct {
		Type         string     `json:"type" binding:"required"`
		BookingID    *uuid.UUID `json:"booking_id"`
		ReporterID   uuid.UUID  `json:"reporter_id" binding:"required"`
		ReporterName string     `json:"reporter_name" binding:"required"`
		RespondentID *uuid.UUID `json:"respondent_id"`
		Description  string     `json:"description" binding:"required"`
		Amount       *float64   `json:"amount"`
		IsUrgent     bool       `json:"is_urgent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.svc.CreateDispute(c.Request.Context(), service.CreateDisputeInput{
		Type:         req.Type,
		BookingID:    req.BookingID,
		ReporterID:   req.ReporterID,
		ReporterName: req.ReporterName,
		RespondentID: req.RespondentID,
		Description:  req.Description,
		Amount:       req.Amount,
		IsUrgent:     req.IsUrgent,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dispute)
}

// GetDispute GET /disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.svc.GetDispute(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// ListDisputes GET /disputes
func (h *DisputeHandler) ListDisputes(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	disputes, err := h.svc.ListDisputes(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, disputes, limit, offset)
}

// AssignDispute POST /disputes/:id/assign
func (h *DisputeHandler) AssignDispute(c *gin.Context) {
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

	dispute, err := h.svc.AssignDispute(c.Request.Context(), id, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// UpdateDisputeStatus PATCH /disputes/:id/status
func (h *DisputeHandler) UpdateDisputeStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
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

	dispute, err := h.svc.UpdateDisputeStatus(c.Request.Context(), id, req.Status, req.Notes, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// ResolveDispute POST /disputes/:id/resolve
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req models.Resolution
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	adminID, adminName, err := currentActor(c, h.auth)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	dispute, err := h.svc.ResolveDispute(c.Request.Context(), id, req, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// ListDisputeRefunds GET /disputes/:id/refunds
func (h *DisputeHandler) ListDisputeRefunds(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	refunds, err := h.moderation.ListDisputeRefunds(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, refunds)
}
