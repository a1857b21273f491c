package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/service"
)

type PaymentHandler struct {
	svc  *service.PaymentService
	auth *service.AuthService
}

func NewPaymentHandler(s *service.PaymentService, auth *service.AuthService) *PaymentHandler {
	return &PaymentHandler{svc: s, auth: auth}
}

// ListPayments GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	payments, err := h.svc.ListPayments(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, payments, limit, offset)
}

// GetPayment GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, err := h.svc.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// VerifyPayment POST /payments/:id/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
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

	payment, err := h.svc.VerifyPayment(c.Request.Context(), id, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// RejectPayment POST /payments/:id/reject
func (h *PaymentHandler) RejectPayment(c *gin.Context) {
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

	payment, err := h.svc.RejectPayment(c.Request.Context(), id, req.Reason, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
