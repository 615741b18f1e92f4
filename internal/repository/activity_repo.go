package repository

import (
	"context"

	"habitgrid/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ActivityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

func (r *ActivityRepository) Insert(ctx context.Context, a *model.Activity) error {
	query := `
        INSERT INTO activities (habit_id, user_id, title, cadence, period_key, message, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		a.HabitID, a.UserID, a.Title, a.Cadence, a.PeriodKey, a.Message,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert activity", zap.String("habit_id", a.HabitID), zap.Error(err))
		return WrapStore("insert activity", err)
	}
	return nil
}

func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	query := `
        SELECT id, habit_id, user_id, title, cadence, period_key, message, created_at
        FROM activities
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list activities", zap.Error(err))
		return nil, WrapStore("list activities", err)
	}
	defer rows.Close()

	var items []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.HabitID, &a.UserID, &a.Title, &a.Cadence, &a.PeriodKey, &a.Message, &a.CreatedAt); err != nil {
			return nil, WrapStore("list activities", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapStore("list activities", err)
	}
	return items, nil
}
