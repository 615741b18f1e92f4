package repository

import (
	"context"
	"errors"

	"habitgrid/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProfileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProfileRepository(db *pgxpool.Pool, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

func (r *ProfileRepository) Upsert(ctx context.Context, userID, displayName string) error {
	query := `
        INSERT INTO profiles (user_id, display_name, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET display_name = EXCLUDED.display_name, updated_at = NOW()
    `
	if _, err := r.db.Exec(ctx, query, userID, displayName); err != nil {
		r.logger.Error("Failed to upsert profile", zap.String("user_id", userID), zap.Error(err))
		return WrapStore("upsert profile", err)
	}
	r.logger.Info("Profile saved", zap.String("user_id", userID))
	return nil
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	query := `
        SELECT user_id, display_name, updated_at
        FROM profiles
        WHERE user_id = $1
    `
	var p model.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.DisplayName, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, WrapStore("get profile", err)
	}
	return &p, nil
}

// DisplayNames 返回 user_id -> display_name，没有 profile 的用户不出现
func (r *ProfileRepository) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	query := `
        SELECT user_id, COALESCE(display_name, '')
        FROM profiles
        WHERE user_id = ANY($1)
    `
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		r.logger.Error("Failed to load display names", zap.Error(err))
		return nil, WrapStore("load display names", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, WrapStore("load display names", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, WrapStore("load display names", err)
	}
	return names, nil
}
