package repository

import (
	"context"
	"time"

	"habitgrid/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CompletionLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCompletionLogRepository(db *pgxpool.Pool, logger *zap.Logger) *CompletionLogRepository {
	return &CompletionLogRepository{
		db:     db,
		logger: logger,
	}
}

// Append 写入一条 completion log；唯一约束 (habit_id, period_key) 冲突时返回 *DuplicateKeyError
func (r *CompletionLogRepository) Append(ctx context.Context, habitID, periodKey string) error {
	r.logger.Debug("Appending completion log",
		zap.String("habit_id", habitID),
		zap.String("period_key", periodKey),
	)

	start := time.Now()
	query := `
        INSERT INTO completion_logs (habit_id, period_key)
        VALUES ($1, $2)
    `
	_, err := r.db.Exec(ctx, query, habitID, periodKey)
	metrics.RecordDBQueryDuration("insert", "completion_logs", time.Since(start))

	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Info("Completion already logged for period",
				zap.String("habit_id", habitID),
				zap.String("period_key", periodKey),
			)
			return &DuplicateKeyError{HabitID: habitID, PeriodKey: periodKey}
		}
		r.logger.Error("Failed to append completion log", zap.Error(err))
		return WrapStore("append completion log", err)
	}

	r.logger.Info("Completion log appended",
		zap.String("habit_id", habitID),
		zap.String("period_key", periodKey),
	)
	return nil
}

// CountByHabit 返回每个 habit 的 log 数量，没有记录的 habit 不出现在结果中
func (r *CompletionLogRepository) CountByHabit(ctx context.Context, habitIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(habitIDs))
	if len(habitIDs) == 0 {
		return counts, nil
	}

	start := time.Now()
	query := `
        SELECT habit_id, COUNT(*)
        FROM completion_logs
        WHERE habit_id = ANY($1)
        GROUP BY habit_id
    `
	rows, err := r.db.Query(ctx, query, habitIDs)
	if err != nil {
		r.logger.Error("Failed to count completion logs", zap.Error(err))
		return nil, WrapStore("count completion logs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			r.logger.Error("Failed to scan completion count", zap.Error(err))
			return nil, WrapStore("count completion logs", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, WrapStore("count completion logs", err)
	}
	metrics.RecordDBQueryDuration("count", "completion_logs", time.Since(start))

	r.logger.Debug("Counted completion logs",
		zap.Int("requested", len(habitIDs)),
		zap.Int("with_logs", len(counts)),
	)
	return counts, nil
}
