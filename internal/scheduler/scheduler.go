package scheduler

import (
	"context"
	"log"
	"time"

	"studytime-backend/internal/repository"
	"studytime-backend/internal/service"
	"studytime-backend/internal/timeutil"
)

// ReportPublisher hands a finished report to the delivery layer.
type ReportPublisher interface {
	PublishDailyReport(ctx context.Context, report *service.DailyReport) error
}

// DailyReportScheduler fires once per day at a fixed local hour and pushes
// each community's daily report to the publisher. Communities with no
// completed sessions that day are skipped.
type DailyReportScheduler struct {
	store     repository.SessionStore
	publisher ReportPublisher
	hour      int
	stopChan  chan struct{}
	now       func() time.Time
}

func NewDailyReportScheduler(store repository.SessionStore, publisher ReportPublisher, hour int) *DailyReportScheduler {
	return &DailyReportScheduler{
		store:     store,
		publisher: publisher,
		hour:      hour,
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
}

func (s *DailyReportScheduler) Start() {
	go s.run()
	log.Printf("Daily report scheduler started (%02d:00)", s.hour)
}

func (s *DailyReportScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *DailyReportScheduler) run() {
	for {
		now := s.now()
		next := nextTrigger(now, s.hour)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.broadcast(context.Background(), s.now())
		}
	}
}

// nextTrigger returns the next occurrence of the given local hour strictly
// after now.
func nextTrigger(now time.Time, hour int) time.Time {
	y, m, d := now.Date()
	target := time.Date(y, m, d, hour, 0, 0, 0, now.Location())
	if !target.After(now) {
		target = target.Add(24 * time.Hour)
	}
	return target
}

// broadcast builds and publishes the day's report for every known
// community. One community's failure is logged and does not block the
// others.
func (s *DailyReportScheduler) broadcast(ctx context.Context, now time.Time) {
	log.Println("Generating daily reports...")

	dayStart, dayEnd := timeutil.DayBounds(now)

	communities, err := s.store.ListCommunities(ctx)
	if err != nil {
		log.Printf("daily report: failed to list communities: %v", err)
		return
	}

	for _, communityID := range communities {
		stats, err := s.store.DailyStats(ctx, communityID, dayStart, dayEnd)
		if err != nil {
			log.Printf("daily report: failed to load stats for community %s: %v", communityID, err)
			continue
		}

		report := service.BuildDailyReport(communityID, now, stats)
		if report == nil {
			continue
		}

		if err := s.publisher.PublishDailyReport(ctx, report); err != nil {
			log.Printf("daily report: failed to publish for community %s: %v", communityID, err)
			continue
		}

		log.Printf("Daily report published for community %s (%d participants)", communityID, report.Participants)
	}
}
