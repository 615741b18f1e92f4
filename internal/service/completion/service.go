// Package completion records "I did it" for a habit in its current period.
package completion

import (
	"context"
	"errors"
	"fmt"

	mqcontracts "habitgrid/contracts/mq"
	"habitgrid/internal/model"
	"habitgrid/internal/period"
	"habitgrid/internal/repository"
	"habitgrid/internal/service/progress"
	"habitgrid/pkg/circuitbreaker"
	"habitgrid/pkg/logger"
	"habitgrid/pkg/metrics"
	"habitgrid/pkg/trace"

	"go.uber.org/zap"
)

// ErrNotOwner 只有 habit 的拥有者可以打卡
var ErrNotOwner = errors.New("only the habit owner can log a completion")

// EventPublisher 由 mq.Publisher 实现
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Service struct {
	habits     repository.HabitStore
	logs       repository.CompletionLogStore
	aggregator *progress.Aggregator
	clock      period.Clock
	publisher  EventPublisher
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewService: publisher 可以为 nil（不发布事件）
func NewService(
	habits repository.HabitStore,
	logs repository.CompletionLogStore,
	aggregator *progress.Aggregator,
	clock period.Clock,
	publisher EventPublisher,
	logger *zap.Logger,
) *Service {
	s := &Service{
		habits:     habits,
		logs:       logs,
		aggregator: aggregator,
		clock:      clock,
		publisher:  publisher,
		logger:     logger,
	}
	cfg := circuitbreaker.DefaultConfig()
	cfg.OnStateChange = func(from, to circuitbreaker.State) {
		logger.Warn("Event publisher circuit state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	s.breaker = circuitbreaker.New(cfg)
	return s
}

// LogError 带上 habit 的 cadence，Error() 就是给用户看的状态信息
type LogError struct {
	Cadence period.Cadence
	Err     error
}

func (e *LogError) Error() string {
	return StatusMessage(e.Err, e.Cadence)
}

func (e *LogError) Unwrap() error {
	return e.Err
}

// Outcome 是一次成功打卡的结果。RefreshError 非空表示写入成功但 totals 刷新失败，
// 此时 Totals 为 nil，调用方保留原来的 totals。
type Outcome struct {
	HabitID      string         `json:"habit_id"`
	PeriodKey    string         `json:"period_key"`
	Totals       map[string]int `json:"totals,omitempty"`
	RefreshError string         `json:"refresh_error,omitempty"`
}

// LogCompletion 计算当前周期 key 并追加一条 log。
// 同周期重复返回 *repository.DuplicateKeyError，其它失败返回 *repository.StoreError。不重试。
func (s *Service) LogCompletion(ctx context.Context, habitID string, cadence period.Cadence) (string, error) {
	key := period.Key(cadence, s.clock.Now())
	log := logger.WithTrace(ctx, s.logger)

	if err := s.logs.Append(ctx, habitID, key); err != nil {
		if repository.IsDuplicate(err) {
			metrics.RecordCompletionDuplicate(string(cadence))
			log.Info("Duplicate completion rejected",
				zap.String("habit_id", habitID),
				zap.String("period_key", key),
			)
			return key, err
		}
		log.Error("Failed to log completion",
			zap.String("habit_id", habitID),
			zap.String("period_key", key),
			zap.Error(err),
		)
		return key, repository.WrapStore("log completion", err)
	}

	metrics.RecordCompletionLogged(string(cadence))
	log.Info("Completion logged",
		zap.String("habit_id", habitID),
		zap.String("cadence", string(cadence)),
		zap.String("period_key", key),
	)
	return key, nil
}

// Complete 是 HTTP 入口：校验拥有者、写入、发布事件，然后只针对当前展示的 habit 重新聚合 totals
func (s *Service) Complete(ctx context.Context, viewerID, habitID string, displayed []string) (*Outcome, error) {
	h, err := s.habits.Get(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if h.UserID != viewerID {
		return nil, ErrNotOwner
	}

	key, err := s.LogCompletion(ctx, h.ID, h.Cadence)
	if err != nil {
		return nil, &LogError{Cadence: h.Cadence, Err: err}
	}

	s.publishCompleted(ctx, h, key)

	out := &Outcome{HabitID: h.ID, PeriodKey: key}
	if len(displayed) == 0 {
		displayed = []string{h.ID}
	}
	totals, err := s.refreshTotals(ctx, viewerID, displayed)
	if err != nil {
		out.RefreshError = StatusMessage(err, h.Cadence)
		return out, nil
	}
	out.Totals = totals
	return out, nil
}

// refreshTotals 只聚合 viewer 能看到的 habit
func (s *Service) refreshTotals(ctx context.Context, viewerID string, displayed []string) (map[string]int, error) {
	ids, err := progress.VisibleIDs(ctx, s.habits, viewerID, displayed)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Totals(ctx, ids)
}

// publishCompleted 发布失败只记录日志，不影响打卡结果
func (s *Service) publishCompleted(ctx context.Context, h *model.Habit, key string) {
	if s.publisher == nil {
		return
	}

	payload := mqcontracts.HabitCompletedPayload{
		HabitID:   h.ID,
		UserID:    h.UserID,
		Title:     h.Title,
		Cadence:   string(h.Cadence),
		Marker:    h.Marker,
		PeriodKey: key,
		TraceID:   trace.FromContext(ctx),
	}

	err := s.breaker.Execute(func() error {
		return s.publisher.Publish(ctx, mqcontracts.RoutingKeyHabitCompleted, payload)
	})
	switch {
	case err == nil:
		metrics.IncrementEventPublished(mqcontracts.RoutingKeyHabitCompleted, "success")
	case errors.Is(err, circuitbreaker.ErrOpen):
		metrics.IncrementEventPublished(mqcontracts.RoutingKeyHabitCompleted, "rejected")
		s.logger.Warn("Skipped habit.completed event, circuit open", zap.String("habit_id", h.ID))
	default:
		metrics.IncrementEventPublished(mqcontracts.RoutingKeyHabitCompleted, "failed")
		s.logger.Error("Failed to publish habit.completed event",
			zap.String("habit_id", h.ID),
			zap.Error(err),
		)
	}
}

// StatusMessage 把错误转成给用户看的状态信息
func StatusMessage(err error, cadence period.Cadence) string {
	if err == nil {
		return ""
	}
	if repository.IsDuplicate(err) {
		return fmt.Sprintf("You already logged it %s!", period.When(cadence))
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Something went wrong."
}
