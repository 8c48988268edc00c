package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hiveguard/hiveguard/internal/database/dbretry"
	"github.com/hiveguard/hiveguard/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ActionLogModel handles database operations for per-guild action log
// channel configuration.
type ActionLogModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewActionLog creates a new action log model instance.
func NewActionLog(db *bun.DB, logger *zap.Logger) *ActionLogModel {
	return &ActionLogModel{
		db:     db,
		logger: logger.Named("db_action_log"),
	}
}

// GetChannelID returns the configured action log channel for a guild, or 0
// when none is configured.
func (m *ActionLogModel) GetChannelID(ctx context.Context, guildID uint64) (uint64, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (uint64, error) {
		var row types.ActionLog

		err := m.db.NewSelect().
			Model(&row).
			Where("guild_id = ?", guildID).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		if err != nil {
			return 0, fmt.Errorf("failed to get action log config: %w", err)
		}

		return row.ChannelID, nil
	})
}

// Upsert stores or replaces a guild's action log channel.
func (m *ActionLogModel) Upsert(ctx context.Context, guildID, channelID uint64) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		row := &types.ActionLog{
			GuildID:   guildID,
			ChannelID: channelID,
			UpdatedAt: time.Now(),
		}

		_, err := m.db.NewInsert().
			Model(row).
			On("CONFLICT (guild_id) DO UPDATE").
			Set("channel_id = EXCLUDED.channel_id").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert action log config: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Stored action log config",
		zap.Uint64("guildID", guildID),
		zap.Uint64("channelID", channelID))

	return nil
}

// Delete removes a guild's action log configuration. Used by the eligibility
// gate when the configured channel no longer exists.
func (m *ActionLogModel) Delete(ctx context.Context, guildID uint64) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewDelete().
			Model((*types.ActionLog)(nil)).
			Where("guild_id = ?", guildID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete action log config: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Deleted stale action log config", zap.Uint64("guildID", guildID))

	return nil
}
