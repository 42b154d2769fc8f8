package respond

import "github.com/gin-gonic/gin"

// JSON writes payload as a JSON body with the given HTTP status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}
