package types

import "time"

// ActionLog is the per-guild destination channel for sweep reports. A guild
// without a row has no action log configured; the eligibility gate deletes
// rows whose channel no longer exists.
type ActionLog struct {
	GuildID   uint64    `bun:",pk"`       // Guild this configuration belongs to
	ChannelID uint64    `bun:",notnull"`  // Channel receiving sweep reports
	UpdatedAt time.Time `bun:",nullzero"` // When the configuration last changed
}
