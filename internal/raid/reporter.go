package raid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

const reportEmbedColor = 0x57f287

// MessageSender posts a report message into a channel.
type MessageSender interface {
	SendEmbed(ctx context.Context, channelID snowflake.ID, embed discord.Embed) error
}

// SweepLogStore persists an audit row for a completed sweep.
type SweepLogStore interface {
	LogSweep(ctx context.Context, guildID uint64, logURL string, candidateCount, bannedCount int) error
}

// Reporter emits the final outcome of a sweep. Sweeps with zero bans produce
// only an internal log line; abort and skip paths stay invisible to end
// users so a failed moderation pass cannot itself be exploited.
type Reporter struct {
	sender      MessageSender
	haste       *HasteUploader
	store       SweepLogStore
	globalLogID snowflake.ID
	logger      *zap.Logger
}

// NewReporter creates a result reporter. globalLogID may be 0 to disable the
// cross-guild log destination.
func NewReporter(
	sender MessageSender, haste *HasteUploader, store SweepLogStore,
	globalLogID snowflake.ID, logger *zap.Logger,
) *Reporter {
	return &Reporter{
		sender:      sender,
		haste:       haste,
		store:       store,
		globalLogID: globalLogID,
		logger:      logger.Named("reporter"),
	}
}

// Report delivers the sweep summary to the guild's action log channel and
// the global log channel. Each destination is best-effort; a failure on one
// is logged and does not affect the other, nor does it retroactively fail
// the sweep.
func (r *Reporter) Report(ctx context.Context, session *Session, actionLogID snowflake.ID) {
	banned := session.BannedIDs()
	if len(banned) == 0 {
		r.logger.Info("No members banned, skipping report",
			zap.String("sessionID", session.ID.String()),
			zap.Uint64("guildID", uint64(session.GuildID)),
			zap.String("logURL", session.LogURL))
		return
	}

	artifactURL := r.uploadArtifact(ctx, session, banned)
	embed := r.buildEmbed(session, len(banned), artifactURL)

	if err := r.sender.SendEmbed(ctx, actionLogID, embed); err != nil {
		r.logger.Error("Failed to deliver report to action log",
			zap.String("sessionID", session.ID.String()),
			zap.Uint64("channelID", uint64(actionLogID)),
			zap.Error(err))
	}

	if r.globalLogID != 0 {
		if err := r.sender.SendEmbed(ctx, r.globalLogID, embed); err != nil {
			r.logger.Error("Failed to deliver report to global log",
				zap.String("sessionID", session.ID.String()),
				zap.Uint64("channelID", uint64(r.globalLogID)),
				zap.Error(err))
		}
	}

	if r.store != nil {
		err := r.store.LogSweep(
			ctx, uint64(session.GuildID), session.LogURL, len(session.Candidates), len(banned),
		)
		if err != nil {
			r.logger.Error("Failed to persist sweep audit row",
				zap.String("sessionID", session.ID.String()),
				zap.Error(err))
		}
	}
}

// uploadArtifact publishes the banned-ID list and returns its URL, or ""
// when the upload fails.
func (r *Reporter) uploadArtifact(ctx context.Context, session *Session, banned []snowflake.ID) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Raid in guild %d (%s)\n", uint64(session.GuildID), session.LogURL)
	fmt.Fprintf(&sb, "Banned %d of %d flagged users:\n\n", len(banned), len(session.Candidates))

	for _, id := range banned {
		sb.WriteString(id.String())
		sb.WriteByte('\n')
	}

	artifactURL, err := r.haste.Upload(ctx, sb.String())
	if err != nil {
		r.logger.Error("Failed to upload ban log artifact",
			zap.String("sessionID", session.ID.String()),
			zap.Error(err))
		return ""
	}

	return artifactURL
}

// buildEmbed renders the outward-visible sweep summary.
func (r *Reporter) buildEmbed(session *Session, bannedCount int, artifactURL string) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("Raid countered").
		SetDescriptionf("Banned %d of %d flagged raiders.", bannedCount, len(session.Candidates)).
		AddField("Raid log", session.LogURL, false).
		SetColor(reportEmbedColor).
		SetTimestamp(time.Now())

	if artifactURL != "" {
		builder.AddField("Ban log", artifactURL, false)
	}

	return builder.Build()
}
