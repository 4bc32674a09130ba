package timeutil

import (
	"fmt"
	"time"
)

// Period is an aggregation window token as supplied by the command layer.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Window sizes for the rolling periods.
const (
	WeekWindowDays  = 7
	MonthWindowDays = 30
)

// ParsePeriod validates a period token, defaulting to week when empty.
func ParsePeriod(s string) (Period, bool) {
	switch s {
	case "":
		return PeriodWeek, true
	case string(PeriodToday), string(PeriodWeek), string(PeriodMonth), string(PeriodAll):
		return Period(s), true
	}
	return "", false
}

// ResolveWindow converts a period token into a concrete [start, end) window
// in epoch milliseconds. "today" starts at local midnight, "week" and
// "month" are rolling windows behind now, "all" starts at epoch zero.
func ResolveWindow(period Period, now time.Time) (start, end int64) {
	end = now.UnixMilli()

	switch period {
	case PeriodToday:
		y, m, d := now.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, now.Location()).UnixMilli()
	case PeriodWeek:
		start = now.Add(-WeekWindowDays * 24 * time.Hour).UnixMilli()
	case PeriodMonth:
		start = now.Add(-MonthWindowDays * 24 * time.Hour).UnixMilli()
	default:
		start = 0
	}

	return start, end
}

// DayBounds returns the local-midnight start and 23:59:59.999 end of the
// day containing t, in epoch milliseconds.
func DayBounds(t time.Time) (start, end int64) {
	y, m, d := t.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return dayStart.UnixMilli(), dayStart.Add(24*time.Hour).UnixMilli() - 1
}

// FormatDuration renders a millisecond duration as 時間/分/秒, dropping
// leading zero units. Negative input is a caller error.
func FormatDuration(ms int64) string {
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d時間%d分%d秒", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%d分%d秒", minutes, seconds)
	}
	return fmt.Sprintf("%d秒", seconds)
}

// FormatDurationShort renders hours and minutes only, flooring the
// sub-minute remainder. Hours are omitted when zero.
func FormatDurationShort(ms int64) string {
	totalMinutes := ms / (1000 * 60)
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	if hours > 0 {
		return fmt.Sprintf("%d時間%d分", hours, minutes)
	}
	return fmt.Sprintf("%d分", minutes)
}

// FormatDate renders a timestamp as YYYY/MM/DD in its own location.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02d", t.Year(), int(t.Month()), t.Day())
}

var weekdayNames = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// FormatDateLong renders a timestamp as a Japanese long date with weekday,
// e.g. 2024年1月15日(月). Used for report headers.
func FormatDateLong(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日(%s)", t.Year(), int(t.Month()), t.Day(), weekdayNames[t.Weekday()])
}

// PeriodDisplayName returns the Japanese label for a period token.
func PeriodDisplayName(period Period) string {
	switch period {
	case PeriodToday:
		return "今日"
	case PeriodWeek:
		return "過去7日間"
	case PeriodMonth:
		return "過去30日間"
	case PeriodAll:
		return "全期間"
	}
	return "過去7日間"
}
