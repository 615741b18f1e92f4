package handler

import (
	"net/http"
	"strings"

	"habitgrid/internal/service/grid"
	"habitgrid/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GridHandler struct {
	grid   *grid.Service
	logger *zap.Logger
}

func NewGridHandler(gridService *grid.Service, logger *zap.Logger) *GridHandler {
	return &GridHandler{grid: gridService, logger: logger}
}

// GetGrid handles GET /grid?layout=square|fluid
func (h *GridHandler) GetGrid(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	log := logger.WithTrace(ctx, h.logger)

	policy := grid.ParseLayout(c.Query("layout"))
	g, err := h.grid.Load(ctx, viewer, policy)
	if err != nil {
		log.Error("GetGrid: failed to load grid",
			zap.String("viewer_id", viewer),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	log.Debug("GetGrid: success",
		zap.String("viewer_id", viewer),
		zap.Int("tile_count", len(g.Tiles)),
	)
	c.JSON(http.StatusOK, g)
}

// GetTotals handles GET /totals?habit_id=a&habit_id=b (逗号分隔也可以)
// 只返回公开的或 viewer 自己的 habit，其它 id 被忽略
func (h *GridHandler) GetTotals(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}
	var ids []string
	for _, raw := range c.QueryArray("habit_id") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	totals, err := h.grid.Totals(c.Request.Context(), viewer, ids)
	if err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Error("GetTotals: failed to aggregate",
			zap.Strings("habit_ids", ids),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totals": totals})
}
