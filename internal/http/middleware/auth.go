package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextAdminIDKey = "adminID"
	ContextRoleKey    = "role"
)

// AuthMiddleware проверяет JWT access токен оператора.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		adminID, role, err := tokens.ParseAccess(raw)
		if err != nil || adminID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(ContextAdminIDKey, adminID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// RequireSuperadmin пропускает только операторов с ролью superadmin.
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRoleKey)
		if role != models.AdminRoleSuperadmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
			return
		}
		c.Next()
	}
}
