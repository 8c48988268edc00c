package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/hiveguard/hiveguard/internal/raid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// DailyStatsKeyPrefix forms the base key for daily statistics in Redis.
	DailyStatsKeyPrefix = "daily_statistics"

	// FieldRaidsDetected tracks how many raid signals reached the pipeline.
	FieldRaidsDetected = "raids_detected"
)

// Client handles Redis operations for storing and retrieving raid statistics.
// It implements raid.StatsRecorder; every counter is best-effort.
type Client struct {
	Client rueidis.Client
	logger *zap.Logger
}

// NewClient creates a Client with the provided Redis connection and logger.
func NewClient(client rueidis.Client, logger *zap.Logger) *Client {
	return &Client{
		Client: client,
		logger: logger,
	}
}

// IncrementRaidDetected counts a raid signal accepted by the pipeline.
func (c *Client) IncrementRaidDetected(ctx context.Context) {
	c.incrementDailyStat(ctx, FieldRaidsDetected, 1)
}

// IncrementRaidAborted counts a sweep aborted by the eligibility gate
// or the executor, keyed by the abort reason.
func (c *Client) IncrementRaidAborted(ctx context.Context, reason raid.AbortReason) {
	c.incrementDailyStat(ctx, "aborted_"+reason.String(), 1)
}

// IncrementBanOutcome counts per-candidate sweep outcomes.
func (c *Client) IncrementBanOutcome(ctx context.Context, outcome raid.Outcome, count int64) {
	c.incrementDailyStat(ctx, "outcome_"+outcome.String(), count)
}

// incrementDailyStat atomically increases a daily statistic counter.
func (c *Client) incrementDailyStat(ctx context.Context, field string, count int64) {
	date := time.Now().UTC().Format("2006-01-02")
	key := fmt.Sprintf("%s:%s", DailyStatsKeyPrefix, date)

	cmd := c.Client.B().Hincrby().Key(key).Field(field).Increment(count).Build()
	if err := c.Client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Error("Failed to increment daily stat",
			zap.Error(err),
			zap.String("field", field),
			zap.Int64("count", count))
	}
}

// GetDailyStats retrieves all counters for the given day.
func (c *Client) GetDailyStats(ctx context.Context, day time.Time) (map[string]int64, error) {
	key := fmt.Sprintf("%s:%s", DailyStatsKeyPrefix, day.UTC().Format("2006-01-02"))

	cmd := c.Client.B().Hgetall().Key(key).Build()
	result, err := c.Client.Do(ctx, cmd).AsIntMap()
	if err != nil {
		c.logger.Error("Failed to get daily stats",
			zap.Error(err),
			zap.String("key", key))
		return nil, err
	}

	return result, nil
}
