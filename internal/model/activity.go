package model

import "time"

// Activity 是动态流中的一条记录，由 habit.completed 事件生成
type Activity struct {
	ID        int64     `json:"id"`
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Cadence   string    `json:"cadence"`
	PeriodKey string    `json:"period_key"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
