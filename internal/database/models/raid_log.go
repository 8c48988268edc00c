package models

import (
	"context"
	"fmt"
	"time"

	"github.com/hiveguard/hiveguard/internal/database/dbretry"
	"github.com/hiveguard/hiveguard/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// RaidLogModel handles database operations for sweep audit rows.
type RaidLogModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRaidLog creates a new raid log model instance.
func NewRaidLog(db *bun.DB, logger *zap.Logger) *RaidLogModel {
	return &RaidLogModel{
		db:     db,
		logger: logger.Named("db_raid_log"),
	}
}

// LogSweep stores the audit row for a completed sweep.
func (m *RaidLogModel) LogSweep(
	ctx context.Context, guildID uint64, logURL string, candidateCount, bannedCount int,
) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		row := &types.RaidBanLog{
			GuildID:        guildID,
			LogURL:         logURL,
			CandidateCount: candidateCount,
			BannedCount:    bannedCount,
			Timestamp:      time.Now(),
		}

		_, err := m.db.NewInsert().Model(row).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to log raid sweep: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Logged raid sweep",
		zap.Uint64("guildID", guildID),
		zap.String("logURL", logURL),
		zap.Int("candidate_count", candidateCount),
		zap.Int("banned_count", bannedCount))

	return nil
}

// GetGuildSweeps retrieves the most recent sweeps for a guild.
func (m *RaidLogModel) GetGuildSweeps(
	ctx context.Context, guildID uint64, limit int,
) ([]*types.RaidBanLog, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.RaidBanLog, error) {
		var logs []*types.RaidBanLog

		err := m.db.NewSelect().
			Model(&logs).
			Where("guild_id = ?", guildID).
			Order("timestamp DESC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get raid sweeps: %w", err)
		}

		return logs, nil
	})
}
