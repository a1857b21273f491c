package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/service"
)

type AuditHandler struct {
	svc *service.AuditService
}

func NewAuditHandler(s *service.AuditService) *AuditHandler {
	return &AuditHandler{svc: s}
}

// ListAuditEntries GET /audit?category=...&action=...
func (h *AuditHandler) ListAuditEntries(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	entries, err := h.svc.List(c.Request.Context(), c.Query("category"), c.Query("action"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, entries, limit, offset)
}
