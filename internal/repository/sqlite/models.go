package sqlite

import (
	"time"

	"habitgrid/internal/model"
	"habitgrid/internal/period"
)

type habitRow struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Cadence   string `gorm:"not null"`
	Marker    string `gorm:"column:progress_marker;not null"`
	IsPublic  bool   `gorm:"index"`
	CreatedAt time.Time
}

func (habitRow) TableName() string { return "habits" }

func (r habitRow) toModel() model.Habit {
	return model.Habit{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Cadence:   period.Cadence(r.Cadence),
		Marker:    r.Marker,
		IsPublic:  r.IsPublic,
		CreatedAt: r.CreatedAt,
	}
}

// completionLogRow: habit_id + period_key 唯一索引保证每个周期最多一条
type completionLogRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	HabitID   string `gorm:"not null;index:idx_completion_logs_habit_period,unique"`
	PeriodKey string `gorm:"not null;index:idx_completion_logs_habit_period,unique"`
	CreatedAt time.Time
}

func (completionLogRow) TableName() string { return "completion_logs" }

type profileRow struct {
	UserID      string `gorm:"primaryKey"`
	DisplayName string
	UpdatedAt   time.Time
}

func (profileRow) TableName() string { return "profiles" }

type activityRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	HabitID   string `gorm:"index"`
	UserID    string
	Title     string
	Cadence   string
	PeriodKey string
	Message   string
	CreatedAt time.Time
}

func (activityRow) TableName() string { return "activities" }

func (r activityRow) toModel() model.Activity {
	return model.Activity{
		ID:        r.ID,
		HabitID:   r.HabitID,
		UserID:    r.UserID,
		Title:     r.Title,
		Cadence:   r.Cadence,
		PeriodKey: r.PeriodKey,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
	}
}
