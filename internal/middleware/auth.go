package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/constants"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/identity"
	"github.com/yukikurage/minitrello-api/internal/logger"
)

// RequireAuth checks the bearer token and stores the caller in the context
func RequireAuth(tokens *identity.Provider, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthorized(c, "Missing authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			apierrors.Unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			log.LogSecurityEvent("invalid_token", "", c.ClientIP(), map[string]interface{}{
				"error": err.Error(),
			})
			apierrors.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}

// GetUserEmail retrieves the current user's e-mail from context
func GetUserEmail(c *gin.Context) string {
	return c.GetString(constants.ContextKeyEmail)
}
