package period

import (
	"fmt"
	"strings"
	"time"
)

// KeyLayout 是 period_key 的格式，completion_logs 唯一约束依赖它，修改属于破坏性变更
const KeyLayout = "2006-01-02"

type Cadence string

const (
	Daily   Cadence = "daily"
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
)

// ParseCadence 解析 cadence 字符串（忽略大小写和首尾空格）
func ParseCadence(s string) (Cadence, error) {
	switch c := Cadence(strings.ToLower(strings.TrimSpace(s))); c {
	case Daily, Weekly, Monthly:
		return c, nil
	default:
		return "", fmt.Errorf("unknown cadence %q", s)
	}
}

func (c Cadence) Valid() bool {
	return c == Daily || c == Weekly || c == Monthly
}

// Key 返回 now 所在周期的规范 key，按 now 自身的时区计算。
//   - daily:   当天日期
//   - weekly:  本周周一（周一为一周第一天）
//   - monthly: 当月 1 号
//
// 未知 cadence 按 daily 处理，Key 永不失败。
func Key(c Cadence, now time.Time) string {
	return startDate(c, now).Format(KeyLayout)
}

// Start 返回 now 所在周期第一天在 now 时区里的第一个时刻。
// 夏令时在零点切换的地区当天没有 00:00，此时返回当天最早存在的整点。
func Start(c Cadence, now time.Time) time.Time {
	sd := startDate(c, now)
	y, m, d := sd.Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	for h := 1; h < 24 && !sameDate(t, sd); h++ {
		t = time.Date(y, m, d, h, 0, 0, 0, now.Location())
	}
	return t
}

// startDate 在 UTC 里做日期运算：本地零点可能不存在，time.Date 会把它规整到前一天
func startDate(c Cadence, now time.Time) time.Time {
	y, m, d := now.Date()
	switch c {
	case Weekly:
		// time.Weekday: 0=Sunday..6=Saturday
		back := (int(now.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, time.UTC)
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Label 返回累计数量的单位，例如 "Total days: 12"
func Label(c Cadence) string {
	switch c {
	case Weekly:
		return "weeks"
	case Monthly:
		return "months"
	default:
		return "days"
	}
}

// When 返回当前周期的口语描述
func When(c Cadence) string {
	switch c {
	case Weekly:
		return "this week"
	case Monthly:
		return "this month"
	default:
		return "today"
	}
}
