package stats_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hiveguard/hiveguard/internal/raid"
	"github.com/hiveguard/hiveguard/internal/stats"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) (*stats.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return stats.NewClient(client, zap.NewNop()), mr
}

func todayKey() string {
	return fmt.Sprintf("%s:%s", stats.DailyStatsKeyPrefix, time.Now().UTC().Format("2006-01-02"))
}

func TestIncrementRaidDetected(t *testing.T) {
	t.Parallel()

	client, mr := setupTest(t)

	client.IncrementRaidDetected(t.Context())
	client.IncrementRaidDetected(t.Context())

	assert.Equal(t, "2", mr.HGet(todayKey(), stats.FieldRaidsDetected))
}

func TestIncrementRaidAborted(t *testing.T) {
	t.Parallel()

	client, mr := setupTest(t)

	client.IncrementRaidAborted(t.Context(), raid.AbortNoActionLog)

	assert.Equal(t, "1", mr.HGet(todayKey(), "aborted_no_action_log"))
}

func TestIncrementBanOutcome(t *testing.T) {
	t.Parallel()

	client, mr := setupTest(t)

	client.IncrementBanOutcome(t.Context(), raid.OutcomeBanned, 12)
	client.IncrementBanOutcome(t.Context(), raid.OutcomeSkippedNotMember, 3)

	assert.Equal(t, "12", mr.HGet(todayKey(), "outcome_banned"))
	assert.Equal(t, "3", mr.HGet(todayKey(), "outcome_skipped_not_member"))
}

func TestGetDailyStats(t *testing.T) {
	t.Parallel()

	client, _ := setupTest(t)

	client.IncrementRaidDetected(t.Context())
	client.IncrementBanOutcome(t.Context(), raid.OutcomeBanned, 5)

	counts, err := client.GetDailyStats(t.Context(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(1), counts[stats.FieldRaidsDetected])
	assert.Equal(t, int64(5), counts["outcome_banned"])
}
