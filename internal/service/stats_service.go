package service

import (
	"context"
	"sort"
	"time"

	"studytime-backend/internal/models"
	"studytime-backend/internal/repository"
	"studytime-backend/internal/timeutil"
)

// StatsService aggregates completed sessions into logs, rankings, and
// daily statistics. It never mutates the store.
type StatsService struct {
	store repository.SessionStore
	now   func() time.Time
}

func NewStatsService(store repository.SessionStore) *StatsService {
	return &StatsService{store: store, now: time.Now}
}

// CompletedSessions returns the user's closed sessions whose start time
// falls inside the resolved period window, newest first.
func (s *StatsService) CompletedSessions(ctx context.Context, userID, communityID string, period timeutil.Period) ([]models.StudySession, error) {
	start, _ := timeutil.ResolveWindow(period, s.now())
	return s.store.ListClosedSince(ctx, userID, communityID, start)
}

// SubjectTotal is one row of a per-subject breakdown.
type SubjectTotal struct {
	Subject   string `json:"subject"`
	TotalTime int64  `json:"total_time"`
}

// UserLog is the aggregate view of one user's completed sessions.
type UserLog struct {
	TotalTime    int64          `json:"total_time"`
	SessionCount int            `json:"session_count"`
	Subjects     []SubjectTotal `json:"subjects"`
}

// BuildUserLog sums completed sessions into a total plus a per-subject
// breakdown sorted by duration descending. Subjects with equal totals keep
// their first-encountered order.
func BuildUserLog(sessions []models.StudySession) UserLog {
	log := UserLog{SessionCount: len(sessions)}

	index := make(map[string]int)
	for _, session := range sessions {
		d := session.Duration()
		log.TotalTime += d

		if i, ok := index[session.Subject]; ok {
			log.Subjects[i].TotalTime += d
		} else {
			index[session.Subject] = len(log.Subjects)
			log.Subjects = append(log.Subjects, SubjectTotal{Subject: session.Subject, TotalTime: d})
		}
	}

	sort.SliceStable(log.Subjects, func(i, j int) bool {
		return log.Subjects[i].TotalTime > log.Subjects[j].TotalTime
	})

	return log
}

// Ranking returns up to the top 10 users of the community by total
// completed duration inside the period window. Users with non-positive
// totals are excluded; ties keep the store's stable output order.
func (s *StatsService) Ranking(ctx context.Context, communityID string, period timeutil.Period) ([]repository.UserTotal, error) {
	start, end := timeutil.ResolveWindow(period, s.now())
	return s.store.RankingData(ctx, communityID, start, end)
}

// DailyStats returns per-user totals and session counts for one day's
// window, for report generation.
func (s *StatsService) DailyStats(ctx context.Context, communityID string, dayStart, dayEnd int64) ([]repository.UserStat, error) {
	return s.store.DailyStats(ctx, communityID, dayStart, dayEnd)
}
