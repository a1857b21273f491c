package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/service"
	"github.com/skladhub/admin-backend/internal/storage"
)

type VerificationHandler struct {
	svc  *service.VerificationService
	auth *service.AuthService
	docs *storage.DocumentStorage
}

func NewVerificationHandler(s *service.VerificationService, auth *service.AuthService, docs *storage.DocumentStorage) *VerificationHandler {
	return &VerificationHandler{svc: s, auth: auth, docs: docs}
}

// SubmitVerification POST /verifications
// Принимает multipart форму: поля user_id, type и файлы documents.
func (h *VerificationHandler) SubmitVerification(c *gin.Context) {
	userID, err := uuid.Parse(c.PostForm("user_id"))
	if err != nil {
		common.RespondBadRequest(c, "некорректный user_id")
		return
	}

	docs, err := h.saveUploadedDocuments(c, userID)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	verification, err := h.svc.SubmitVerification(c.Request.Context(), service.SubmitVerificationInput{
		UserID:    userID,
		Type:      c.PostForm("type"),
		Documents: docs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, verification)
}

// GetVerification GET /verifications/:id
func (h *VerificationHandler) GetVerification(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	verification, err := h.svc.GetVerification(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}

// ListVerifications GET /verifications
func (h *VerificationHandler) ListVerifications(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	items, err := h.svc.ListVerifications(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondList(c, items, limit, offset)
}

// ApproveVerification POST /verifications/:id/approve
func (h *VerificationHandler) ApproveVerification(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		common.RespondBadRequest(c, err.Error())
		return
	}

	adminID, adminName, err := currentActor(c, h.auth)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	verification, err := h.svc.ApproveVerification(c.Request.Context(), id, adminID, adminName, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}

// RejectVerification POST /verifications/:id/reject
func (h *VerificationHandler) RejectVerification(c *gin.Context) {
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

	verification, err := h.svc.RejectVerification(c.Request.Context(), id, req.Reason, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}

// RequestDocuments POST /verifications/:id/request-documents
func (h *VerificationHandler) RequestDocuments(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Documents []string `json:"documents" binding:"required"`
		Message   string   `json:"message" binding:"required"`
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

	verification, err := h.svc.RequestAdditionalDocuments(c.Request.Context(), id, req.Documents, req.Message, adminID, adminName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}

// ResubmitDocuments POST /verifications/:id/documents
// Принимает multipart форму с файлами documents от пользователя.
func (h *VerificationHandler) ResubmitDocuments(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	current, err := h.svc.GetVerification(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	docs, err := h.saveUploadedDocuments(c, current.UserID)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	verification, err := h.svc.ResubmitDocuments(c.Request.Context(), id, docs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}

// saveUploadedDocuments сохраняет файлы формы в хранилище документов.
func (h *VerificationHandler) saveUploadedDocuments(c *gin.Context, userID uuid.UUID) (models.DocumentList, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	var docs models.DocumentList
	for _, fileHeader := range form.File["documents"] {
		f, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}

		path, size, err := h.docs.Save(c.Request.Context(), userID, fileHeader.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}

		kind := c.PostForm("kind")
		if kind == "" {
			kind = "document"
		}

		docs = append(docs, models.VerificationDocument{
			Kind:       kind,
			FilePath:   path,
			FileSize:   size,
			UploadedAt: time.Now().UTC(),
		})
	}

	return docs, nil
}
