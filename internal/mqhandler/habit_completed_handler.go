package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	mqcontracts "habitgrid/contracts/mq"
	"habitgrid/internal/model"
	"habitgrid/internal/period"
	"habitgrid/internal/repository"
	"habitgrid/pkg/mq"

	"go.uber.org/zap"
)

const habitCompletedHandlerName = "habit_completed_activity"

// Deduper 由 util.Deduper 实现
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, id string) bool
	Release(ctx context.Context, handler, id string)
}

// HabitCompletedHandler 把 habit.completed 事件写入动态流。
// 同一 (habit, period) 只写一次：Redis 去重在前，MQ 重投时也不会重复
type HabitCompletedHandler struct {
	activities repository.ActivityStore
	deduper    Deduper
	logger     *zap.Logger
}

func NewHabitCompletedHandler(activities repository.ActivityStore, deduper Deduper, logger *zap.Logger) *HabitCompletedHandler {
	return &HabitCompletedHandler{
		activities: activities,
		deduper:    deduper,
		logger:     logger,
	}
}

func (h *HabitCompletedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.HabitCompletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal HabitCompletedPayload", zap.Error(err))
		return mq.Poison(err)
	}

	log := h.logger.With(
		zap.String("habit_id", p.HabitID),
		zap.String("user_id", p.UserID),
		zap.String("period_key", p.PeriodKey),
		zap.String("trace_id", p.TraceID),
	)
	log.Info("Handling habit.completed event")

	if p.HabitID == "" || p.UserID == "" || p.PeriodKey == "" {
		log.Error("Invalid habit.completed event")
		return mq.Poison(fmt.Errorf("habit.completed missing habit_id, user_id or period_key"))
	}

	dedupID := p.HabitID + ":" + p.PeriodKey
	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, habitCompletedHandlerName, dedupID) {
		return nil
	}

	a := &model.Activity{
		HabitID:   p.HabitID,
		UserID:    p.UserID,
		Title:     p.Title,
		Cadence:   p.Cadence,
		PeriodKey: p.PeriodKey,
		Message:   activityMessage(p),
	}
	if err := h.activities.Insert(ctx, a); err != nil {
		log.Error("Failed to insert activity", zap.Error(err))
		if h.deduper != nil {
			h.deduper.Release(ctx, habitCompletedHandlerName, dedupID)
		}
		return err
	}

	log.Info("Activity recorded", zap.Int64("activity_id", a.ID))
	return nil
}

// activityMessage 例如 "* Yoga done today"
func activityMessage(p mqcontracts.HabitCompletedPayload) string {
	c, err := period.ParseCadence(p.Cadence)
	if err != nil {
		c = period.Daily
	}
	if p.Marker == "" {
		return fmt.Sprintf("%s done %s", p.Title, period.When(c))
	}
	return fmt.Sprintf("%s %s done %s", p.Marker, p.Title, period.When(c))
}
