package mq

const (
	RoutingKeyHabitCompleted = "habit.completed"
	QueueHabitCompletedFeed  = "habit.completed.activity.q"
)

// HabitCompletedPayload 打卡成功后发布
type HabitCompletedPayload struct {
	HabitID   string `json:"habit_id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Cadence   string `json:"cadence"` // daily / weekly / monthly
	Marker    string `json:"progress_marker"`
	PeriodKey string `json:"period_key"` // YYYY-MM-DD
	TraceID   string `json:"trace_id,omitempty"`
}
