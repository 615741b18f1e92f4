package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ViewerKey 是 AuthMiddleware 写入 gin.Context 的 key
const ViewerKey = "user_id"

func viewerID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ViewerKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", false
	}
	return id, true
}
