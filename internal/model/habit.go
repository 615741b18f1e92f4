package model

import (
	"time"

	"habitgrid/internal/period"
)

// Habit 表示 habits 表的一行
type Habit struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title"`
	Cadence   period.Cadence `json:"cadence"`
	Marker    string         `json:"progress_marker"`
	IsPublic  bool           `json:"is_public"`
	CreatedAt time.Time      `json:"created_at"`
}

// CompletionLog 表示 completion_logs 表的一行，(habit_id, period_key) 唯一
type CompletionLog struct {
	ID        int64     `json:"id"`
	HabitID   string    `json:"habit_id"`
	PeriodKey string    `json:"period_key"`
	CreatedAt time.Time `json:"created_at"`
}
