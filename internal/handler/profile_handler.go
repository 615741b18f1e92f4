package handler

import (
	"errors"
	"net/http"

	"habitgrid/internal/repository"
	"habitgrid/internal/service/habit"
	"habitgrid/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	svc    *habit.Service
	logger *zap.Logger
}

func NewProfileHandler(svc *habit.Service, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, logger: logger}
}

// Onboard handles POST /onboarding
func (h *ProfileHandler) Onboard(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}

	var req habit.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	created, err := h.svc.Onboard(c.Request.Context(), viewer, req)
	if err != nil {
		h.writeError(c, "Onboard", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}

	view, err := h.svc.Profile(c.Request.Context(), viewer)
	if err != nil {
		h.writeError(c, "GetProfile", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type saveProfileRequest struct {
	DisplayName string            `json:"display_name"`
	Habits      []habit.HabitEdit `json:"habits"`
}

// SaveProfile handles PUT /profile
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}

	var req saveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.SaveProfile(c.Request.Context(), viewer, req.DisplayName, req.Habits); err != nil {
		h.writeError(c, "SaveProfile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Saved"})
}

func (h *ProfileHandler) writeError(c *gin.Context, op string, err error) {
	var ve *habit.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	default:
		logger.WithTrace(c.Request.Context(), h.logger).Error(op+": failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
