package timeutil

import (
	"testing"
	"time"
)

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    Period
		wantStart int64
	}{
		{"today starts at midnight", PeriodToday, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{"week is rolling 7 days", PeriodWeek, now.Add(-7 * 24 * time.Hour).UnixMilli()},
		{"month is rolling 30 days", PeriodMonth, now.Add(-30 * 24 * time.Hour).UnixMilli()},
		{"all starts at epoch", PeriodAll, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := ResolveWindow(tc.period, now)
			if start != tc.wantStart {
				t.Errorf("start = %d, want %d", start, tc.wantStart)
			}
			if end != now.UnixMilli() {
				t.Errorf("end = %d, want %d", end, now.UnixMilli())
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input  string
		want   Period
		wantOK bool
	}{
		{"", PeriodWeek, true},
		{"today", PeriodToday, true},
		{"week", PeriodWeek, true},
		{"month", PeriodMonth, true},
		{"all", PeriodAll, true},
		{"year", "", false},
		{"TODAY", "", false},
	}

	for _, tc := range tests {
		got, ok := ParsePeriod(tc.input)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParsePeriod(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0秒"},
		{5000, "5秒"},
		{65000, "1分5秒"},
		{90 * 60 * 1000, "1時間30分0秒"},
		{3*3600*1000 + 7*60*1000 + 9*1000, "3時間7分9秒"},
		{59999, "59秒"}, // floors, never rounds
	}

	for _, tc := range tests {
		if got := FormatDuration(tc.ms); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0分"},
		{59999, "0分"},
		{90 * 60 * 1000, "1時間30分"},
		{25 * 60 * 1000, "25分"},
		{2*3600*1000 + 59*1000, "2時間0分"},
	}

	for _, tc := range tests {
		if got := FormatDurationShort(tc.ms); got != tc.want {
			t.Errorf("FormatDurationShort(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	start, end := DayBounds(at)

	wantStart := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	if start != wantStart {
		t.Errorf("start = %d, want %d", start, wantStart)
	}
	if end != wantStart+24*3600*1000-1 {
		t.Errorf("end = %d, want %d", end, wantStart+24*3600*1000-1)
	}
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	if got := FormatDate(at); got != "2024/01/05" {
		t.Errorf("FormatDate = %q, want 2024/01/05", got)
	}
}

func TestFormatDateLong(t *testing.T) {
	// 2024-01-15 is a Monday.
	at := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if got := FormatDateLong(at); got != "2024年1月15日(月)" {
		t.Errorf("FormatDateLong = %q", got)
	}
}

func TestPeriodDisplayName(t *testing.T) {
	if got := PeriodDisplayName(PeriodMonth); got != "過去30日間" {
		t.Errorf("PeriodDisplayName(month) = %q", got)
	}
	if got := PeriodDisplayName(PeriodAll); got != "全期間" {
		t.Errorf("PeriodDisplayName(all) = %q", got)
	}
}
