package database

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// slowQueryThreshold marks queries worth surfacing at warn level.
const slowQueryThreshold = 250 * time.Millisecond

// Hook logs executed queries to the database logger.
type Hook struct {
	logger *zap.Logger
}

func NewHook(logger *zap.Logger) *Hook {
	return &Hook{logger: logger.Named("query")}
}

func (h *Hook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *Hook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)

	fields := []zap.Field{
		zap.String("operation", event.Operation()),
		zap.Duration("duration", elapsed),
	}
	if event.Err != nil {
		fields = append(fields, zap.Error(event.Err))
	}

	if elapsed >= slowQueryThreshold {
		h.logger.Warn("Slow query", append(fields, zap.String("query", event.Query))...)
		return
	}

	h.logger.Debug("Query executed", fields...)
}
