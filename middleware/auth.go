package middleware

import (
	"errors"
	"net/http"
	"strings"

	"shop-service/services"

	"github.com/gin-gonic/gin"
)

const (
	UserContextKey  = "userID"
	TokenContextKey = "accessToken"
)

// AuthMiddleware validates the Bearer token, rejects blacklisted ones, and
// resolves it to the stable user id for downstream handlers.
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		userID, err := tokens.Validate(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(UserContextKey, userID)
		c.Set(TokenContextKey, raw)
		c.Next()
	}
}

// GetUserID returns the authenticated user id set by AuthMiddleware.
func GetUserID(c *gin.Context) (uint, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(uint); ok && id != 0 {
			return id, nil
		}
	}
	return 0, errors.New("user ID not found in context")
}

// GetToken returns the raw access token set by AuthMiddleware.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenContextKey)
}
