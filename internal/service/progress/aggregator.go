// Package progress derives per-habit completion totals from the completion log store.
package progress

import (
	"context"
	"time"

	"habitgrid/internal/repository"
	"habitgrid/pkg/metrics"

	"go.uber.org/zap"
)

// Aggregator 每次调用都直接读取存储，不做缓存：totals 必须反映写入后的最新状态
type Aggregator struct {
	logs   repository.CompletionLogStore
	logger *zap.Logger
}

func NewAggregator(logs repository.CompletionLogStore, logger *zap.Logger) *Aggregator {
	return &Aggregator{logs: logs, logger: logger}
}

// Totals 返回 habitID -> 完成次数。每个请求的 id 都会出现在结果中，没有记录的为 0。
// 空输入直接返回空 map，不访问存储。
func (a *Aggregator) Totals(ctx context.Context, habitIDs []string) (map[string]int, error) {
	ids := uniq(habitIDs)
	if len(ids) == 0 {
		return map[string]int{}, nil
	}

	start := time.Now()
	counts, err := a.logs.CountByHabit(ctx, ids)
	if err != nil {
		metrics.RecordTotalsQueryDuration("error", time.Since(start))
		a.logger.Error("Failed to aggregate totals",
			zap.Int("habit_count", len(ids)),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.RecordTotalsQueryDuration("ok", time.Since(start))

	totals := make(map[string]int, len(ids))
	for _, id := range ids {
		totals[id] = counts[id]
	}

	a.logger.Debug("Aggregated totals", zap.Int("habit_count", len(ids)))
	return totals, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
