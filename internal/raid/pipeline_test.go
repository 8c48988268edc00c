package raid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/hiveguard/hiveguard/internal/raid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStats struct {
	mu       sync.Mutex
	detected int
	aborted  map[raid.AbortReason]int
	outcomes map[raid.Outcome]int64
}

func newFakeStats() *fakeStats {
	return &fakeStats{
		aborted:  make(map[raid.AbortReason]int),
		outcomes: make(map[raid.Outcome]int64),
	}
}

func (f *fakeStats) IncrementRaidDetected(context.Context) {
	f.mu.Lock()
	f.detected++
	f.mu.Unlock()
}

func (f *fakeStats) IncrementRaidAborted(_ context.Context, reason raid.AbortReason) {
	f.mu.Lock()
	f.aborted[reason]++
	f.mu.Unlock()
}

func (f *fakeStats) IncrementBanOutcome(_ context.Context, outcome raid.Outcome, count int64) {
	f.mu.Lock()
	f.outcomes[outcome] += count
	f.mu.Unlock()
}

type pipelineFixture struct {
	pipeline *raid.Pipeline
	registry *raid.Registry
	guilds   *fakeGuildAccessor
	sender   *fakeSender
	store    *fakeSweepStore
	stats    *fakeStats
	banner   *fakeBanner
	logURL   string
}

func setupPipeline(t *testing.T, logBody string, members []snowflake.ID) *pipelineFixture {
	t.Helper()

	logSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(logBody))
	}))
	t.Cleanup(logSrv.Close)

	guilds := &fakeGuildAccessor{canBan: true, exists: true, canPost: true}
	sender := &fakeSender{}
	store := &fakeSweepStore{}
	stats := newFakeStats()
	banner := &fakeBanner{}
	registry := raid.NewRegistry()
	logger := zap.NewNop()

	pipeline := raid.NewPipeline(
		raid.NewGate(guilds, &fakeActionLogStore{channelID: 555}, logger),
		raid.NewLogFetcher(5*time.Second, logger),
		raid.NewExecutor(&fakeLister{members: members}, logger),
		raid.NewReporter(sender, hasteServer(t), store, 0, logger),
		raid.NewPool(makeCredentials(banner), logger),
		registry,
		stats,
		logger,
	)

	return &pipelineFixture{
		pipeline: pipeline,
		registry: registry,
		guilds:   guilds,
		sender:   sender,
		store:    store,
		stats:    stats,
		banner:   banner,
		logURL:   logSrv.URL,
	}
}

func TestPipelineHandlesRaidEndToEnd(t *testing.T) {
	t.Parallel()

	f := setupPipeline(t, sampleLog, []snowflake.ID{
		111111111111111111,
		222222222222222222,
		333333333333333333,
	})

	f.pipeline.Handle(t.Context(), &raid.Signal{
		Type:    raid.SignalType,
		GuildID: 100,
		LogURL:  f.logURL,
	})

	assert.Equal(t, 3, f.banner.banCount())
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, snowflake.ID(555), f.sender.sent[0].channelID)

	assert.Equal(t, 1, f.stats.detected)
	assert.Equal(t, int64(3), f.stats.outcomes[raid.OutcomeBanned])
	assert.Equal(t, 1, f.store.calls)

	// The session registration is released once the sweep completes.
	assert.NoError(t, f.registry.Begin(raid.NewSession(100, "", nil, nil)))
}

func TestPipelineCountsGateAborts(t *testing.T) {
	t.Parallel()

	f := setupPipeline(t, sampleLog, nil)
	f.guilds.canBan = false

	f.pipeline.Handle(t.Context(), &raid.Signal{
		Type:    raid.SignalType,
		GuildID: 100,
		LogURL:  f.logURL,
	})

	assert.Equal(t, 1, f.stats.detected)
	assert.Equal(t, 1, f.stats.aborted[raid.AbortMissingBanPermission])
	assert.Equal(t, 0, f.banner.banCount())
	assert.Empty(t, f.sender.sent)
}

func TestPipelineCountsEmptySweeps(t *testing.T) {
	t.Parallel()

	// Everyone flagged in the log already left the guild.
	f := setupPipeline(t, sampleLog, []snowflake.ID{999999999999999999})

	f.pipeline.Handle(t.Context(), &raid.Signal{
		Type:    raid.SignalType,
		GuildID: 100,
		LogURL:  f.logURL,
	})

	assert.Equal(t, 1, f.stats.aborted[raid.AbortNoMembersToBan])
	assert.Empty(t, f.sender.sent)
}

func TestPipelineIgnoresEmptyLogs(t *testing.T) {
	t.Parallel()

	f := setupPipeline(t, "no raw ids here", nil)

	f.pipeline.Handle(t.Context(), &raid.Signal{
		Type:    raid.SignalType,
		GuildID: 100,
		LogURL:  f.logURL,
	})

	assert.Equal(t, 1, f.stats.detected)
	assert.Empty(t, f.stats.aborted)
	assert.Empty(t, f.sender.sent)
}

func TestPipelineDropsDuplicateSignals(t *testing.T) {
	t.Parallel()

	f := setupPipeline(t, sampleLog, []snowflake.ID{111111111111111111})

	// A sweep is already running for the guild.
	require.NoError(t, f.registry.Begin(raid.NewSession(100, "", nil, nil)))

	f.pipeline.Handle(t.Context(), &raid.Signal{
		Type:    raid.SignalType,
		GuildID: 100,
		LogURL:  f.logURL,
	})

	assert.Equal(t, 0, f.banner.banCount())
	assert.Empty(t, f.sender.sent)
}
