package middleware

import (
	"net/http"
	"strings"

	"festival-media-center/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	// SessionIDKey holds the form session id of a verified token
	SessionIDKey = "session_id"
	// FormKindKey holds the form kind of a verified token
	FormKindKey = "form_kind"
)

// SessionAuth requires a bearer token issued for the form session named by
// the :id route parameter
func SessionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			// Expecting format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		claims, err := utils.ParseSessionToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if id := c.Param("id"); id != "" && id != claims.SessionID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this form"})
			return
		}

		c.Set(SessionIDKey, claims.SessionID)
		c.Set(FormKindKey, claims.Kind)
		c.Next()
	}
}
