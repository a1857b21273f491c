package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skladhub/admin-backend/internal/dto"
	"github.com/skladhub/admin-backend/internal/http/handlers/common"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/service"
)

// respondServiceError транслирует ошибку сервиса в HTTP ответ.
// AppError несёт свой статус и код, остальное маскируется как 500.
func respondServiceError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Error: appErr.Message,
			Code:  string(appErr.Code),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "внутренняя ошибка сервера"})
}

// currentActor возвращает ID и имя текущего оператора для аудита.
func currentActor(c *gin.Context, auth *service.AuthService) (uuid.UUID, string, error) {
	adminID, err := common.CurrentAdminID(c)
	if err != nil {
		return uuid.Nil, "", err
	}

	admin, err := auth.GetAdmin(c.Request.Context(), adminID)
	if err != nil {
		return uuid.Nil, "", err
	}

	return adminID, admin.Name, nil
}
