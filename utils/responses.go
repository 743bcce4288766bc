// utils/responses.go
package utils

import "github.com/gin-gonic/gin"

// RespondWithError writes the standard JSON error envelope
func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
