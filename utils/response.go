package utils

import "github.com/gin-gonic/gin"

// RespondWithError aborts the request with the JSON error envelope used by every handler.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   message,
	})
}
