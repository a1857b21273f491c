package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/service"
)

type ModerationHandler struct {
	svc  *service.ModerationService
	auth *service.AuthService
}

func NewModerationHandler(s *service.ModerationService, auth *service.AuthService) *ModerationHandler {
	return &ModerationHandler{svc: s, auth: auth}
}

// ListUsers GET /users
func (h *ModerationHandler) ListUsers(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	users, err := h.svc.ListUsers(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, users, limit, offset)
}

// GetUser GET /users/:id
func (h *ModerationHandler) GetUser(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ReinstateUser POST /users/:id/reinstate
func (h *ModerationHandler) ReinstateUser(c *gin.Context) {
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

	user, err := h.svc.ReinstateUser(c.Request.Context(), id, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListListings GET /listings
func (h *ModerationHandler) ListListings(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	listings, err := h.svc.ListListings(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, listings, limit, offset)
}

// GetListing GET /listings/:id
func (h *ModerationHandler) GetListing(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.svc.GetListing(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// UnblockListing POST /listings/:id/unblock
func (h *ModerationHandler) UnblockListing(c *gin.Context) {
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

	listing, err := h.svc.UnblockListing(c.Request.Context(), id, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ListPendingRefunds GET /refunds/pending
func (h *ModerationHandler) ListPendingRefunds(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	refunds, err := h.svc.ListPendingRefunds(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, refunds, limit, offset)
}

// ProcessRefund POST /refunds/:id/process
func (h *ModerationHandler) ProcessRefund(c *gin.Context) {
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

	refund, err := h.svc.ProcessRefund(c.Request.Context(), id, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, refund)
}
