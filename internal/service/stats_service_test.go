package service

import (
	"context"
	"testing"
	"time"

	"studytime-backend/internal/models"
	"studytime-backend/internal/timeutil"
)

func newTestStatsService(store *memStore, at time.Time) *StatsService {
	svc := NewStatsService(store)
	svc.now = func() time.Time { return at }
	return svc
}

func closedSession(subject string, start, durationMS int64) models.StudySession {
	end := start + durationMS
	return models.StudySession{Subject: subject, StartTime: start, EndTime: &end}
}

func TestCompletedSessions_WindowAndOrder(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	svc := newTestStatsService(store, now)
	ctx := context.Background()

	inWindow := now.Add(-2 * 24 * time.Hour).UnixMilli()
	newer := now.Add(-1 * 24 * time.Hour).UnixMilli()
	outside := now.Add(-9 * 24 * time.Hour).UnixMilli()

	store.InsertClosed(ctx, "u1", "g1", "math", inWindow, inWindow+3600000, nil)
	store.InsertClosed(ctx, "u1", "g1", "english", newer, newer+1800000, nil)
	store.InsertClosed(ctx, "u1", "g1", "old", outside, outside+3600000, nil)
	store.InsertOpen(ctx, "u1", "g1", "running", newer)

	sessions, err := svc.CompletedSessions(ctx, "u1", "g1", timeutil.PeriodWeek)
	if err != nil {
		t.Fatalf("CompletedSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Subject != "english" || sessions[1].Subject != "math" {
		t.Errorf("Expected newest-first order, got %q, %q", sessions[0].Subject, sessions[1].Subject)
	}
}

func TestBuildUserLog_TotalsAndBreakdown(t *testing.T) {
	sessions := []models.StudySession{
		closedSession("math", 1000, 3600000),
		closedSession("english", 2000, 1800000),
		closedSession("math", 3000, 1800000),
	}

	log := BuildUserLog(sessions)

	if log.TotalTime != 7200000 {
		t.Errorf("Expected total 7200000, got %d", log.TotalTime)
	}
	if log.SessionCount != 3 {
		t.Errorf("Expected 3 sessions, got %d", log.SessionCount)
	}
	if len(log.Subjects) != 2 {
		t.Fatalf("Expected 2 subjects, got %d", len(log.Subjects))
	}
	if log.Subjects[0].Subject != "math" || log.Subjects[0].TotalTime != 5400000 {
		t.Errorf("Expected math first with 5400000, got %+v", log.Subjects[0])
	}
}

func TestBuildUserLog_TieKeepsFirstEncounteredOrder(t *testing.T) {
	sessions := []models.StudySession{
		closedSession("biology", 1000, 1800000),
		closedSession("chemistry", 2000, 1800000),
	}

	log := BuildUserLog(sessions)

	if log.Subjects[0].Subject != "biology" || log.Subjects[1].Subject != "chemistry" {
		t.Errorf("Tied subjects should keep input order, got %+v", log.Subjects)
	}
}

func TestBuildUserLog_Empty(t *testing.T) {
	log := BuildUserLog(nil)
	if log.TotalTime != 0 || log.SessionCount != 0 || len(log.Subjects) != 0 {
		t.Errorf("Expected empty log, got %+v", log)
	}
}

func TestRanking_OrderAndTies(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	svc := newTestStatsService(store, now)
	ctx := context.Background()

	start := now.Add(-1 * time.Hour).UnixMilli()
	store.InsertClosed(ctx, "u2", "g1", "math", start, start+100000, nil)
	store.InsertClosed(ctx, "u1", "g1", "math", start+1, start+1+300000, nil)
	store.InsertClosed(ctx, "u3", "g1", "math", start+2, start+2+100000, nil)

	ranking, err := svc.Ranking(ctx, "g1", timeutil.PeriodToday)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(ranking) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(ranking))
	}
	if ranking[0].UserID != "u1" || ranking[0].TotalTime != 300000 {
		t.Errorf("Expected u1 first with 300000, got %+v", ranking[0])
	}
	// The two tied 100000 users keep stable input order.
	if ranking[1].UserID != "u2" || ranking[2].UserID != "u3" {
		t.Errorf("Expected tie order u2, u3; got %q, %q", ranking[1].UserID, ranking[2].UserID)
	}
}

func TestRanking_ExcludesZeroTotals(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	svc := newTestStatsService(store, now)
	ctx := context.Background()

	start := now.Add(-1 * time.Hour).UnixMilli()
	// Force-closed session: zero duration.
	store.InsertClosed(ctx, "u1", "g1", "math", start, start, nil)
	store.InsertClosed(ctx, "u2", "g1", "math", start, start+60000, nil)

	ranking, err := svc.Ranking(ctx, "g1", timeutil.PeriodToday)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(ranking) != 1 || ranking[0].UserID != "u2" {
		t.Errorf("Expected only u2 ranked, got %+v", ranking)
	}
}

func TestRanking_TopTenLimit(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	svc := newTestStatsService(store, now)
	ctx := context.Background()

	start := now.Add(-1 * time.Hour).UnixMilli()
	for i := 0; i < 12; i++ {
		userID := string(rune('a' + i))
		store.InsertClosed(ctx, userID, "g1", "math", start, start+int64(i+1)*60000, nil)
	}

	ranking, err := svc.Ranking(ctx, "g1", timeutil.PeriodToday)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(ranking) != 10 {
		t.Errorf("Expected top 10, got %d", len(ranking))
	}
}

func TestEndToEnd_StartStopLog(t *testing.T) {
	store := newMemStore()
	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)
	sessions, clock := newTestSessionService(store, at)
	stats := newTestStatsService(store, at.Add(90*time.Minute))
	ctx := context.Background()

	if _, err := sessions.Start(ctx, "u1", "g1", "math", false); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	*clock = clock.Add(90 * time.Minute)

	if _, err := sessions.Stop(ctx, "u1", "g1", ""); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	completed, err := stats.CompletedSessions(ctx, "u1", "g1", timeutil.PeriodToday)
	if err != nil {
		t.Fatalf("CompletedSessions failed: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("Expected 1 completed session, got %d", len(completed))
	}
	if completed[0].Subject != "math" {
		t.Errorf("Expected subject 'math', got %q", completed[0].Subject)
	}
	if completed[0].Duration() != 90*60*1000 {
		t.Errorf("Expected 90 minute duration, got %d ms", completed[0].Duration())
	}
}
