package response

import "github.com/gin-gonic/gin"

// Handlers return resource payloads directly; only errors and confirmations
// use the {"message": ...} shape.

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"message": message})
}

func Message(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"message": message})
}
