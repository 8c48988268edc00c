package raid

import (
	"context"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// AbortError reports a classified eligibility failure. The pipeline counts
// the reason and stops; nothing outward-visible happens.
type AbortError struct {
	Reason AbortReason
}

func (e *AbortError) Error() string {
	return "raid sweep aborted: " + e.Reason.String()
}

// GuildAccessor exposes the permission and channel lookups the gate needs.
// Implemented over the Discord client in internal/bot; faked in tests.
type GuildAccessor interface {
	// HasBanPermission reports whether the bot's own account holds ban
	// authority in the guild.
	HasBanPermission(ctx context.Context, guildID snowflake.ID) (bool, error)

	// ChannelExists reports whether the channel still exists in the guild.
	ChannelExists(ctx context.Context, guildID, channelID snowflake.ID) (bool, error)

	// CanViewAndSend reports whether the bot can view and post in the channel.
	CanViewAndSend(ctx context.Context, guildID, channelID snowflake.ID) (bool, error)
}

// ActionLogStore provides the per-guild action log channel configuration.
type ActionLogStore interface {
	// GetChannelID returns the configured action log channel, or 0 when none
	// is configured.
	GetChannelID(ctx context.Context, guildID uint64) (uint64, error)

	// Delete removes a stale configuration row.
	Delete(ctx context.Context, guildID uint64) error
}

// Gate decides whether a ban sweep may proceed in a guild. All checks are
// pure reads except the stale action log cleanup.
type Gate struct {
	guilds GuildAccessor
	store  ActionLogStore
	logger *zap.Logger
}

// NewGate creates an eligibility gate.
func NewGate(guilds GuildAccessor, store ActionLogStore, logger *zap.Logger) *Gate {
	return &Gate{
		guilds: guilds,
		store:  store,
		logger: logger.Named("gate"),
	}
}

// Check runs the eligibility checks in order and returns the action log
// channel to report into. The first failing check wins; classified failures
// come back as *AbortError, infrastructure failures as ordinary errors.
func (g *Gate) Check(ctx context.Context, guildID snowflake.ID) (snowflake.ID, error) {
	canBan, err := g.guilds.HasBanPermission(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to check ban permission: %w", err)
	}

	if !canBan {
		g.logger.Debug("Skipping raid, missing ban permission",
			zap.Uint64("guildID", uint64(guildID)))
		return 0, &AbortError{Reason: AbortMissingBanPermission}
	}

	rawChannelID, err := g.store.GetChannelID(ctx, uint64(guildID))
	if err != nil {
		return 0, fmt.Errorf("failed to load action log config: %w", err)
	}

	if rawChannelID == 0 {
		g.logger.Debug("Skipping raid, no action log configured",
			zap.Uint64("guildID", uint64(guildID)))
		return 0, &AbortError{Reason: AbortNoActionLog}
	}

	channelID := snowflake.ID(rawChannelID)

	exists, err := g.guilds.ChannelExists(ctx, guildID, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to check action log channel: %w", err)
	}

	if !exists {
		// The configured channel is gone; drop the stale row so the guild
		// shows up as unconfigured from now on.
		if err := g.store.Delete(ctx, uint64(guildID)); err != nil {
			g.logger.Error("Failed to delete stale action log config",
				zap.Uint64("guildID", uint64(guildID)),
				zap.Error(err))
		}

		g.logger.Debug("Skipping raid, action log channel no longer exists",
			zap.Uint64("guildID", uint64(guildID)),
			zap.Uint64("channelID", rawChannelID))

		return 0, &AbortError{Reason: AbortNoActionLog}
	}

	canPost, err := g.guilds.CanViewAndSend(ctx, guildID, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to check action log permissions: %w", err)
	}

	if !canPost {
		g.logger.Debug("Skipping raid, cannot view or post in action log",
			zap.Uint64("guildID", uint64(guildID)),
			zap.Uint64("channelID", rawChannelID))
		return 0, &AbortError{Reason: AbortMissingViewSendPermission}
	}

	return channelID, nil
}
