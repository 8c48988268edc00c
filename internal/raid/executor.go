package raid

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Discord JSON error codes the sweep classifies.
const (
	jsonErrUnknownUser       = 10013
	jsonErrMissingPermission = 50013
	jsonErrBanListFull       = 30035
)

// ErrNoCredentials is returned when no configured credential is a member of
// the target guild, so no ban request could be issued at all.
var ErrNoCredentials = errors.New("no eligible ban credentials for guild")

// MemberLister produces the authoritative membership listing a sweep
// snapshots at start.
type MemberLister interface {
	ListMemberIDs(ctx context.Context, guildID snowflake.ID) ([]snowflake.ID, error)
}

// Executor drives a ban sweep to completion. Every eligible candidate is
// dispatched concurrently, each request assigned to a credential by
// round-robin so the sweep's throughput scales with the number of
// independent rate-limit budgets rather than being serialized behind one.
type Executor struct {
	lister MemberLister
	logger *zap.Logger
}

// NewExecutor creates a ban executor.
func NewExecutor(lister MemberLister, logger *zap.Logger) *Executor {
	return &Executor{
		lister: lister,
		logger: logger.Named("executor"),
	}
}

// Execute runs the sweep for a session, populating its banned IDs and
// outcome tallies. Classified per-candidate failures never fail the sweep;
// only infrastructure errors (membership listing) and the classified abort
// conditions surface as errors.
func (e *Executor) Execute(ctx context.Context, session *Session) error {
	memberIDs, err := e.lister.ListMemberIDs(ctx, session.GuildID)
	if err != nil {
		return fmt.Errorf("failed to list guild members: %w", err)
	}

	session.SetMembership(memberIDs)

	toBan := session.MemberCandidates()
	if len(toBan) == 0 {
		e.logger.Info("Skipping sweep, no flagged users are still members",
			zap.String("sessionID", session.ID.String()),
			zap.Uint64("guildID", uint64(session.GuildID)),
			zap.Int("candidates", len(session.Candidates)))

		return &AbortError{Reason: AbortNoMembersToBan}
	}

	credentials := session.Credentials()
	if len(credentials) == 0 {
		return ErrNoCredentials
	}

	// Candidates already gone at snapshot time never dispatch, but they
	// still get classified so every candidate records exactly one outcome.
	for range len(session.Candidates) - len(toBan) {
		session.Counts.Record(OutcomeSkippedNotMember)
	}

	e.logger.Info("Starting ban sweep",
		zap.String("sessionID", session.ID.String()),
		zap.Uint64("guildID", uint64(session.GuildID)),
		zap.String("logURL", session.LogURL),
		zap.Int("members_to_ban", len(toBan)),
		zap.Int("candidates", len(session.Candidates)),
		zap.Int("credentials", len(credentials)))

	reason := fmt.Sprintf("Detected as a userbot raider in %s", session.LogURL)

	// Cancelling sweepCtx is the only early-stop mechanism: it fires when a
	// ban-list-full result makes every remaining attempt pointless. Requests
	// already in flight may still land.
	sweepCtx, halt := context.WithCancel(ctx)
	defer halt()

	// Rotation advances only for candidates that actually dispatch a
	// request, so skipped candidates never perturb the distribution across
	// credentials that perform work.
	var rotation atomic.Uint64

	p := pool.New().WithContext(sweepCtx)

	for _, userID := range toBan {
		p.Go(func(taskCtx context.Context) error {
			if taskCtx.Err() != nil {
				// Halted before dispatch; the attempt would have failed the
				// same way the halting one did.
				session.Counts.Record(OutcomeSkippedBanListFull)
				return nil
			}

			// Re-check right before dispatch; the member leave observer may
			// have removed this user since the snapshot was taken.
			if !session.IsMember(userID) {
				session.Counts.Record(OutcomeSkippedNotMember)
				e.logger.Debug("Skipping candidate, no longer a member",
					zap.String("sessionID", session.ID.String()),
					zap.Uint64("userID", uint64(userID)))

				return nil
			}

			slot := int((rotation.Add(1) - 1) % uint64(len(credentials)))
			credential := credentials[slot]

			err := credential.Banner.Ban(taskCtx, session.GuildID, userID, reason)
			if err == nil {
				session.RecordBan(userID)
				e.logger.Debug("Banned raider",
					zap.String("sessionID", session.ID.String()),
					zap.Uint64("userID", uint64(userID)),
					zap.String("credential", credential.Label))

				return nil
			}

			outcome := classifyBanError(err)
			session.Counts.Record(outcome)

			switch {
			case outcome.Fatal():
				e.logger.Warn("Ban list is full, halting sweep",
					zap.String("sessionID", session.ID.String()),
					zap.Uint64("guildID", uint64(session.GuildID)))
				halt()
			case outcome == OutcomeUnexpectedError:
				e.logger.Error("Unexpected ban failure",
					zap.String("sessionID", session.ID.String()),
					zap.Uint64("guildID", uint64(session.GuildID)),
					zap.Uint64("userID", uint64(userID)),
					zap.Int("credentialIndex", slot),
					zap.String("credential", credential.Label),
					zap.Error(err))
			default:
				e.logger.Debug("Skipping candidate",
					zap.String("sessionID", session.ID.String()),
					zap.Uint64("userID", uint64(userID)),
					zap.String("outcome", outcome.String()))
			}

			return nil
		})
	}

	_ = p.Wait()

	e.logger.Info("Ban sweep finished",
		zap.String("sessionID", session.ID.String()),
		zap.Uint64("guildID", uint64(session.GuildID)),
		zap.Int64("banned", session.Counts.Banned.Load()),
		zap.Int64("skipped_not_member", session.Counts.SkippedNotMember.Load()),
		zap.Int64("skipped_invalid_user", session.Counts.SkippedInvalidUser.Load()),
		zap.Int64("skipped_missing_permission", session.Counts.SkippedMissingPermission.Load()),
		zap.Int64("skipped_ban_list_full", session.Counts.SkippedBanListFull.Load()),
		zap.Int64("unexpected_errors", session.Counts.UnexpectedErrors.Load()))

	return nil
}

// classifyBanError maps a ban request failure onto a per-candidate outcome.
// Context cancellation counts as work cut off by the halt; no external
// cancellation exists in this pipeline.
func classifyBanError(err error) Outcome {
	if errors.Is(err, context.Canceled) {
		return OutcomeSkippedBanListFull
	}

	var restErr rest.Error
	if errors.As(err, &restErr) {
		switch int(restErr.Code) {
		case jsonErrUnknownUser:
			return OutcomeSkippedInvalidUser
		case jsonErrMissingPermission:
			return OutcomeSkippedMissingPermission
		case jsonErrBanListFull:
			return OutcomeSkippedBanListFull
		}
	}

	return OutcomeUnexpectedError
}
