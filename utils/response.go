package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response. Only the message reaches the
// client; the wrapped error chain stays in the logs.
func JSONError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  status,
		"message": message,
	})
}

// JSONResponseFields sends a structured JSON response with extra top-level
// fields next to status and message.
func JSONResponseFields(c *gin.Context, status int, fields gin.H, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}
