package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/service"
)

type ReviewHandler struct {
	svc  *service.ReviewService
	auth *service.AuthService
}

func NewReviewHandler(s *service.ReviewService, auth *service.AuthService) *ReviewHandler {
	return &ReviewHandler{svc: s, auth: auth}
}

// ListReviews GET /reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	reviews, err := h.svc.ListReviews(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, reviews, limit, offset)
}

// GetReview GET /reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.svc.GetReview(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// ApproveReview POST /reviews/:id/approve
func (h *ReviewHandler) ApproveReview(c *gin.Context) {
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

	review, err := h.svc.ApproveReview(c.Request.Context(), id, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// RejectReview POST /reviews/:id/reject
func (h *ReviewHandler) RejectReview(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
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

	review, err := h.svc.RejectReview(c.Request.Context(), id, req.Reason, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// FlagReview POST /reviews/:id/flag
func (h *ReviewHandler) FlagReview(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
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

	review, err := h.svc.FlagReview(c.Request.Context(), id, req.Reason, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
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

	if err := h.svc.DeleteReview(c.Request.Context(), id, adminID, adminName); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "отзыв удалён"})
}
