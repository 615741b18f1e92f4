package repository

import (
	"context"

	"habitgrid/internal/model"
)

// CompletionLogStore 是 completion log 的追加式存储。
// Append 对同一 (habitID, periodKey) 的第二次写入必须返回 *DuplicateKeyError，
// 其它失败返回 *StoreError。CountByHabit 可以省略没有记录的 habit，调用方按 0 处理。
type CompletionLogStore interface {
	Append(ctx context.Context, habitID, periodKey string) error
	CountByHabit(ctx context.Context, habitIDs []string) (map[string]int, error)
}

type HabitStore interface {
	Create(ctx context.Context, h *model.Habit) error
	Get(ctx context.Context, id string) (*model.Habit, error)
	// ListPublic 按创建顺序返回所有公开 habit
	ListPublic(ctx context.Context) ([]model.Habit, error)
	ListByUser(ctx context.Context, userID string) ([]model.Habit, error)
	// UpdateOwned 只更新 title 和 marker，且仅当 user_id 匹配
	UpdateOwned(ctx context.Context, userID string, h *model.Habit) error
}

type ProfileStore interface {
	Upsert(ctx context.Context, userID, displayName string) error
	Get(ctx context.Context, userID string) (*model.Profile, error)
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

type ActivityStore interface {
	Insert(ctx context.Context, a *model.Activity) error
	ListRecent(ctx context.Context, limit int) ([]model.Activity, error)
}

// Store 聚合所有存储接口，postgres / sqlite / memory 三种实现都满足它
type Store interface {
	Habits() HabitStore
	Profiles() ProfileStore
	Logs() CompletionLogStore
	Activities() ActivityStore
	Ping(ctx context.Context) error
	Close() error
}
