package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"fitshop_backend/internal/auth"
	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/models"
	"fitshop_backend/pkg/apperrors"
	"fitshop_backend/pkg/contextkeys"
)

// AuthMiddleware validates the bearer token and stores userID and role on the context.
func AuthMiddleware(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid token"))
			c.Abort()
			return
		}

		c.Set(contextkeys.UserIDKey, claims.UserID)
		c.Set(contextkeys.RoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireRoles lets the request through only for one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role := models.UserRole(c.GetString(contextkeys.RoleKey))
		if role == "" {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			c.Abort()
			return
		}
		if !roleSet[role] {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}
