// Package sqlite implements the repository contracts on a local SQLite file through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"habitgrid/internal/model"
	"habitgrid/internal/repository"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// Open 打开（必要时创建）SQLite 数据库并执行迁移。path 可以是 ":memory:"
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&habitRow{}, &completionLogRow{}, &profileRow{}, &activityRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}

	log.Info("SQLite store ready", zap.String("path", path))
	return &Store{db: db, logger: log}, nil
}

func (s *Store) Habits() repository.HabitStore { return habitStore{s} }
func (s *Store) Profiles() repository.ProfileStore { return profileStore{s} }
func (s *Store) Logs() repository.CompletionLogStore { return logStore{s} }
func (s *Store) Activities() repository.ActivityStore { return activityStore{s} }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type habitStore struct{ s *Store }

func (h habitStore) Create(ctx context.Context, m *model.Habit) error {
	row := habitRow{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Cadence:   string(m.Cadence),
		Marker:    m.Marker,
		IsPublic:  m.IsPublic,
		CreatedAt: m.CreatedAt,
	}
	if err := h.s.db.WithContext(ctx).Create(&row).Error; err != nil {
		h.s.logger.Error("Failed to insert habit", zap.Error(err))
		return repository.WrapStore("create habit", err)
	}
	m.CreatedAt = row.CreatedAt
	return nil
}

func (h habitStore) Get(ctx context.Context, id string) (*model.Habit, error) {
	var row habitRow
	err := h.s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, repository.WrapStore("get habit", err)
	}
	m := row.toModel()
	return &m, nil
}

func (h habitStore) ListPublic(ctx context.Context) ([]model.Habit, error) {
	return h.list(ctx, "list public habits", "is_public = ?", true)
}

func (h habitStore) ListByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	return h.list(ctx, "list user habits", "user_id = ?", userID)
}

func (h habitStore) list(ctx context.Context, op string, where string, arg any) ([]model.Habit, error) {
	var rows []habitRow
	err := h.s.db.WithContext(ctx).
		Where(where, arg).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		h.s.logger.Error("Failed to list habits", zap.String("op", op), zap.Error(err))
		return nil, repository.WrapStore(op, err)
	}
	habits := make([]model.Habit, 0, len(rows))
	for _, r := range rows {
		habits = append(habits, r.toModel())
	}
	return habits, nil
}

func (h habitStore) UpdateOwned(ctx context.Context, userID string, m *model.Habit) error {
	res := h.s.db.WithContext(ctx).
		Model(&habitRow{}).
		Where("id = ? AND user_id = ?", m.ID, userID).
		Updates(map[string]any{"title": m.Title, "progress_marker": m.Marker})
	if res.Error != nil {
		return repository.WrapStore("update habit", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type profileStore struct{ s *Store }

func (p profileStore) Upsert(ctx context.Context, userID, displayName string) error {
	row := profileRow{UserID: userID, DisplayName: displayName}
	err := p.s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return repository.WrapStore("upsert profile", err)
	}
	return nil
}

func (p profileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var row profileRow
	err := p.s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, repository.WrapStore("get profile", err)
	}
	return &model.Profile{UserID: row.UserID, DisplayName: row.DisplayName, UpdatedAt: row.UpdatedAt}, nil
}

func (p profileStore) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	var rows []profileRow
	if err := p.s.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, repository.WrapStore("load display names", err)
	}
	for _, r := range rows {
		names[r.UserID] = r.DisplayName
	}
	return names, nil
}

type logStore struct{ s *Store }

func (l logStore) Append(ctx context.Context, habitID, periodKey string) error {
	row := completionLogRow{HabitID: habitID, PeriodKey: periodKey}
	err := l.s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		l.s.logger.Info("Completion already logged for period",
			zap.String("habit_id", habitID),
			zap.String("period_key", periodKey),
		)
		return &repository.DuplicateKeyError{HabitID: habitID, PeriodKey: periodKey}
	}
	if err != nil {
		l.s.logger.Error("Failed to append completion log", zap.Error(err))
		return repository.WrapStore("append completion log", err)
	}
	return nil
}

func (l logStore) CountByHabit(ctx context.Context, habitIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(habitIDs))
	if len(habitIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		HabitID string
		Total   int
	}
	err := l.s.db.WithContext(ctx).
		Model(&completionLogRow{}).
		Select("habit_id, COUNT(*) AS total").
		Where("habit_id IN ?", habitIDs).
		Group("habit_id").
		Scan(&rows).Error
	if err != nil {
		return nil, repository.WrapStore("count completion logs", err)
	}
	for _, r := range rows {
		counts[r.HabitID] = r.Total
	}
	return counts, nil
}

type activityStore struct{ s *Store }

func (a activityStore) Insert(ctx context.Context, m *model.Activity) error {
	row := activityRow{
		HabitID:   m.HabitID,
		UserID:    m.UserID,
		Title:     m.Title,
		Cadence:   m.Cadence,
		PeriodKey: m.PeriodKey,
		Message:   m.Message,
	}
	if err := a.s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return repository.WrapStore("insert activity", err)
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	return nil
}

func (a activityStore) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	var rows []activityRow
	err := a.s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, repository.WrapStore("list activities", err)
	}
	items := make([]model.Activity, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toModel())
	}
	return items, nil
}
