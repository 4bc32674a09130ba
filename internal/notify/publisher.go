package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"studytime-backend/internal/service"
)

const (
	reportQueueKey      = "queue:report-delivery"
	reportChannelPrefix = "community_reports:"
)

// ReportChannel is the pub/sub channel carrying a community's reports.
func ReportChannel(communityID string) string {
	return reportChannelPrefix + communityID
}

// ReportPublisher pushes finished reports to the external delivery layer:
// onto a Redis list consumed by the delivery worker, and onto a pub/sub
// channel for live listeners. It never selects destinations itself.
type ReportPublisher struct {
	redis *redis.Client
}

func NewReportPublisher(redisClient *redis.Client) *ReportPublisher {
	return &ReportPublisher{redis: redisClient}
}

func (p *ReportPublisher) PublishDailyReport(ctx context.Context, report *service.DailyReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := p.redis.RPush(ctx, reportQueueKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue report: %w", err)
	}

	if err := p.redis.Publish(ctx, ReportChannel(report.CommunityID), data).Err(); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	return nil
}
