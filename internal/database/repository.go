package database

import (
	"github.com/hiveguard/hiveguard/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all model operations.
type Repository struct {
	actionLog *models.ActionLogModel
	raidLog   *models.RaidLogModel
}

// NewRepository creates a repository with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		actionLog: models.NewActionLog(db, logger),
		raidLog:   models.NewRaidLog(db, logger),
	}
}

// ActionLog returns the action log channel model.
func (r *Repository) ActionLog() *models.ActionLogModel {
	return r.actionLog
}

// RaidLog returns the raid ban log model.
func (r *Repository) RaidLog() *models.RaidLogModel {
	return r.raidLog
}
