package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpsTokenRequired gates the kitchen/dispatch routes behind a shared token.
// The operations systems are trusted internal callers, not account holders.
func OpsTokenRequired(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Ops-Token") != token {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Valid X-Ops-Token header required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
