package handler

import (
	"net/http"
	"strconv"

	"habitgrid/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type ActivityHandler struct {
	activities repository.ActivityStore
	logger     *zap.Logger
}

func NewActivityHandler(activities repository.ActivityStore, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger}
}

// ListActivity handles GET /activity?limit=N
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, maxActivityLimit)
	}

	items, err := h.activities.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("ListActivity: failed to fetch activity", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		c.JSON(http.StatusOK, gin.H{"activity": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": items})
}
