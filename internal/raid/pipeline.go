package raid

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// StatsRecorder counts pipeline events for metrics. Implementations must be
// best-effort; the pipeline never fails on a counter.
type StatsRecorder interface {
	IncrementRaidDetected(ctx context.Context)
	IncrementRaidAborted(ctx context.Context, reason AbortReason)
	IncrementBanOutcome(ctx context.Context, outcome Outcome, count int64)
}

// Pipeline wires the full sweep flow for signals this shard owns:
// eligibility gate, log fetch, session construction, ban execution and
// reporting. One signal in, at most one sweep out; no retries anywhere.
type Pipeline struct {
	gate     *Gate
	fetcher  *LogFetcher
	executor *Executor
	reporter *Reporter
	pool     *Pool
	registry *Registry
	stats    StatsRecorder
	logger   *zap.Logger
}

// NewPipeline assembles the sweep pipeline.
func NewPipeline(
	gate *Gate, fetcher *LogFetcher, executor *Executor, reporter *Reporter,
	pool *Pool, registry *Registry, stats StatsRecorder, logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		gate:     gate,
		fetcher:  fetcher,
		executor: executor,
		reporter: reporter,
		pool:     pool,
		registry: registry,
		stats:    stats,
		logger:   logger.Named("pipeline"),
	}
}

// Handle processes one raid signal end to end. Implements Handler.
func (p *Pipeline) Handle(ctx context.Context, signal *Signal) {
	p.stats.IncrementRaidDetected(ctx)

	logger := p.logger.With(
		zap.Uint64("guildID", uint64(signal.GuildID)),
		zap.String("logURL", signal.LogURL))

	actionLogID, err := p.gate.Check(ctx, signal.GuildID)
	if err != nil {
		var abortErr *AbortError
		if errors.As(err, &abortErr) {
			p.stats.IncrementRaidAborted(ctx, abortErr.Reason)
			return
		}

		logger.Error("Eligibility check failed", zap.Error(err))

		return
	}

	candidates, err := p.fetcher.Fetch(ctx, signal.LogURL)
	if err != nil {
		logger.Error("Failed to fetch raid log, abandoning sweep", zap.Error(err))
		return
	}

	if len(candidates) == 0 {
		logger.Info("Raid log contains no flagged users, nothing to do")
		return
	}

	credentials := p.pool.ForGuild(ctx, signal.GuildID)
	session := NewSession(signal.GuildID, signal.LogURL, candidates, credentials)

	if err := p.registry.Begin(session); err != nil {
		logger.Warn("Dropping raid signal", zap.Error(err))
		return
	}
	defer p.registry.End(signal.GuildID)

	if err := p.executor.Execute(ctx, session); err != nil {
		var abortErr *AbortError
		if errors.As(err, &abortErr) {
			p.stats.IncrementRaidAborted(ctx, abortErr.Reason)
			return
		}

		logger.Error("Ban sweep failed", zap.Error(err))

		return
	}

	p.recordOutcomes(ctx, session)
	p.reporter.Report(ctx, session, actionLogID)
}

// recordOutcomes flushes the session's tallies into the stats counters.
func (p *Pipeline) recordOutcomes(ctx context.Context, session *Session) {
	counts := map[Outcome]int64{
		OutcomeBanned:                   session.Counts.Banned.Load(),
		OutcomeSkippedNotMember:         session.Counts.SkippedNotMember.Load(),
		OutcomeSkippedInvalidUser:       session.Counts.SkippedInvalidUser.Load(),
		OutcomeSkippedMissingPermission: session.Counts.SkippedMissingPermission.Load(),
		OutcomeSkippedBanListFull:       session.Counts.SkippedBanListFull.Load(),
		OutcomeUnexpectedError:          session.Counts.UnexpectedErrors.Load(),
	}

	for outcome, count := range counts {
		if count > 0 {
			p.stats.IncrementBanOutcome(ctx, outcome, count)
		}
	}
}
