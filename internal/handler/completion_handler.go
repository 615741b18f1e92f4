package handler

import (
	"errors"
	"io"
	"net/http"

	"habitgrid/internal/repository"
	"habitgrid/internal/service/completion"
	"habitgrid/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CompletionHandler struct {
	svc    *completion.Service
	logger *zap.Logger
}

func NewCompletionHandler(svc *completion.Service, logger *zap.Logger) *CompletionHandler {
	return &CompletionHandler{svc: svc, logger: logger}
}

type completeRequest struct {
	// Displayed 是客户端当前展示的 habit，成功后只刷新这些 totals
	Displayed []string `json:"displayed"`
}

// Complete handles POST /habits/:id/complete
func (h *CompletionHandler) Complete(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}
	habitID := c.Param("id")
	ctx := c.Request.Context()
	log := logger.WithTrace(ctx, h.logger)

	// body 可省略；chunked 请求的 ContentLength 是 -1，空 body 解码得到 io.EOF
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	log.Info("Complete request received",
		zap.String("habit_id", habitID),
		zap.String("viewer_id", viewer),
	)

	out, err := h.svc.Complete(ctx, viewer, habitID, req.Displayed)
	if err != nil {
		var dup *repository.DuplicateKeyError
		switch {
		case errors.As(err, &dup):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "period_key": dup.PeriodKey})
		case errors.Is(err, completion.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		default:
			log.Error("Complete: failed",
				zap.String("habit_id", habitID),
				zap.Error(err),
			)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, out)
}
