package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 打卡成功计数
	CompletionLoggedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completion_logged_total",
			Help: "Total number of completion logs appended",
		},
		[]string{"cadence"},
	)

	// 同一周期重复打卡计数
	CompletionDuplicateCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completion_duplicate_total",
			Help: "Total number of completion attempts rejected as duplicates",
		},
		[]string{"cadence"},
	)

	// totals 聚合延迟（秒）
	TotalsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habit_totals_query_duration_seconds",
			Help:    "Totals aggregation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// MQ 事件发布计数
	EventPublishedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_event_published_total",
			Help: "Total number of events published",
		},
		[]string{"routing_key", "status"}, // status: success, failed, rejected
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)
)

// RecordCompletionLogged 记录一次成功打卡
func RecordCompletionLogged(cadence string) {
	CompletionLoggedCount.WithLabelValues(cadence).Inc()
}

// RecordCompletionDuplicate 记录一次重复打卡
func RecordCompletionDuplicate(cadence string) {
	CompletionDuplicateCount.WithLabelValues(cadence).Inc()
}

func RecordTotalsQueryDuration(status string, duration time.Duration) {
	TotalsQueryDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementEventPublished(routingKey, status string) {
	EventPublishedCount.WithLabelValues(routingKey, status).Inc()
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}
