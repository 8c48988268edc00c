package types

import "time"

// RaidBanLog is the audit row persisted for every sweep that banned at least
// one user. An audit trail, not a resumption mechanism; failed sweeps leave
// no row.
type RaidBanLog struct {
	ID             int64     `bun:",pk,autoincrement"` // Unique identifier
	GuildID        uint64    `bun:",notnull"`          // Guild the sweep ran in
	LogURL         string    `bun:",notnull"`          // Provenance raid log
	CandidateCount int       `bun:",notnull"`          // Flagged users in the log
	BannedCount    int       `bun:",notnull"`          // Users actually banned
	Timestamp      time.Time `bun:",notnull"`          // When the sweep completed
}
