package service

import (
	"fmt"
	"time"

	"studytime-backend/internal/repository"
	"studytime-backend/internal/timeutil"
)

// Encouragement tiers by average study time per participant.
const (
	encouragementHighThreshold = 4 * 60 * 60 * 1000
	encouragementMidThreshold  = 2 * 60 * 60 * 1000
)

const (
	encouragementHigh = "素晴らしい集中力です！明日も頑張りましょう！🌟"
	encouragementMid  = "良いペースで勉強できていますね！継続が大切です！📚"
	encouragementLow  = "コツコツ続けることが大切です！明日も一緒に頑張りましょう！💪"
)

// ReportEntry is one ranked row of a daily report.
type ReportEntry struct {
	Rank          int    `json:"rank"`
	Label         string `json:"label"`
	UserID        string `json:"user_id"`
	TotalTime     int64  `json:"total_time"`
	TotalTimeText string `json:"total_time_text"`
	SessionCount  int    `json:"session_count"`
}

// DailyReport is the structured summary handed to the delivery layer. The
// delivery layer renders it; the core does not pick destinations.
type DailyReport struct {
	CommunityID   string        `json:"community_id"`
	Date          string        `json:"date"`
	Participants  int           `json:"participants"`
	TotalTime     int64         `json:"total_time"`
	TotalTimeText string        `json:"total_time_text"`
	TotalSessions int           `json:"total_sessions"`
	Ranking       []ReportEntry `json:"ranking"`
	Encouragement string        `json:"encouragement"`
}

// BuildDailyReport composes a report from one day's per-user statistics.
// Returns nil when there are no participants: the daily broadcast must not
// fire on empty days.
func BuildDailyReport(communityID string, date time.Time, stats []repository.UserStat) *DailyReport {
	if len(stats) == 0 {
		return nil
	}

	report := &DailyReport{
		CommunityID:  communityID,
		Date:         timeutil.FormatDateLong(date),
		Participants: len(stats),
	}

	for _, stat := range stats {
		report.TotalTime += stat.TotalTime
		report.TotalSessions += stat.SessionCount
	}
	report.TotalTimeText = timeutil.FormatDurationShort(report.TotalTime)

	for i, stat := range stats {
		if i >= 5 {
			break
		}
		report.Ranking = append(report.Ranking, ReportEntry{
			Rank:          i + 1,
			Label:         rankLabel(i),
			UserID:        stat.UserID,
			TotalTime:     stat.TotalTime,
			TotalTimeText: timeutil.FormatDurationShort(stat.TotalTime),
			SessionCount:  stat.SessionCount,
		})
	}

	avg := report.TotalTime / int64(report.Participants)
	switch {
	case avg >= encouragementHighThreshold:
		report.Encouragement = encouragementHigh
	case avg >= encouragementMidThreshold:
		report.Encouragement = encouragementMid
	default:
		report.Encouragement = encouragementLow
	}

	return report
}

var rankMedals = [...]string{"🥇", "🥈", "🥉"}

func rankLabel(index int) string {
	if index < len(rankMedals) {
		return rankMedals[index]
	}
	return fmt.Sprintf("%d位", index+1)
}
