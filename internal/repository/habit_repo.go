package repository

import (
	"context"
	"errors"
	"time"

	"habitgrid/internal/model"
	"habitgrid/internal/period"
	"habitgrid/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type HabitRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHabitRepository(db *pgxpool.Pool, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{
		db:     db,
		logger: logger,
	}
}

const habitColumns = `id, user_id, title, cadence, progress_marker, is_public, created_at`

func (r *HabitRepository) Create(ctx context.Context, h *model.Habit) error {
	r.logger.Debug("Inserting habit",
		zap.String("user_id", h.UserID),
		zap.String("title", h.Title),
		zap.String("cadence", string(h.Cadence)),
	)

	start := time.Now()
	query := `
        INSERT INTO habits (id, user_id, title, cadence, progress_marker, is_public)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query,
		h.ID,
		h.UserID,
		h.Title,
		string(h.Cadence),
		h.Marker,
		h.IsPublic,
	).Scan(&h.CreatedAt)
	metrics.RecordDBQueryDuration("insert", "habits", time.Since(start))

	if err != nil {
		r.logger.Error("Failed to insert habit", zap.Error(err))
		return WrapStore("create habit", err)
	}

	r.logger.Info("Habit inserted successfully",
		zap.String("id", h.ID),
		zap.String("user_id", h.UserID),
	)
	return nil
}

func (r *HabitRepository) Get(ctx context.Context, id string) (*model.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	h, err := scanHabit(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get habit", zap.String("id", id), zap.Error(err))
		return nil, WrapStore("get habit", err)
	}
	return h, nil
}

func (r *HabitRepository) ListPublic(ctx context.Context) ([]model.Habit, error) {
	r.logger.Debug("Listing public habits")

	query := `
        SELECT ` + habitColumns + `
        FROM habits
        WHERE is_public = TRUE
        ORDER BY created_at ASC, id ASC
    `
	habits, err := r.list(ctx, "list public habits", query)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Listed public habits", zap.Int("count", len(habits)))
	return habits, nil
}

func (r *HabitRepository) ListByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	r.logger.Debug("Listing habits for user", zap.String("user_id", userID))

	query := `
        SELECT ` + habitColumns + `
        FROM habits
        WHERE user_id = $1
        ORDER BY created_at ASC, id ASC
    `
	return r.list(ctx, "list user habits", query, userID)
}

func (r *HabitRepository) UpdateOwned(ctx context.Context, userID string, h *model.Habit) error {
	query := `
        UPDATE habits
        SET title = $1, progress_marker = $2
        WHERE id = $3 AND user_id = $4
    `
	tag, err := r.db.Exec(ctx, query, h.Title, h.Marker, h.ID, userID)
	if err != nil {
		r.logger.Error("Failed to update habit", zap.String("id", h.ID), zap.Error(err))
		return WrapStore("update habit", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.logger.Info("Habit updated", zap.String("id", h.ID), zap.String("user_id", userID))
	return nil
}

func (r *HabitRepository) list(ctx context.Context, op, query string, args ...any) ([]model.Habit, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list habits", zap.String("op", op), zap.Error(err))
		return nil, WrapStore(op, err)
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			r.logger.Error("Failed to scan habit", zap.Error(err))
			return nil, WrapStore(op, err)
		}
		habits = append(habits, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapStore(op, err)
	}
	metrics.RecordDBQueryDuration("select", "habits", time.Since(start))
	return habits, nil
}

func scanHabit(row pgx.Row) (*model.Habit, error) {
	var (
		h       model.Habit
		cadence string
	)
	if err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Title,
		&cadence,
		&h.Marker,
		&h.IsPublic,
		&h.CreatedAt,
	); err != nil {
		return nil, err
	}
	h.Cadence = period.Cadence(cadence)
	return &h, nil
}
