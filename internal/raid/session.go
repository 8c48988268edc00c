package raid

import (
	"sync"
	"sync/atomic"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// Counts tallies per-candidate outcomes for one sweep. Safe for concurrent
// use by the executor's in-flight requests.
type Counts struct {
	Banned                   atomic.Int64
	SkippedNotMember         atomic.Int64
	SkippedInvalidUser       atomic.Int64
	SkippedMissingPermission atomic.Int64
	SkippedBanListFull       atomic.Int64
	UnexpectedErrors         atomic.Int64
}

// Record folds one classified outcome into the tallies.
func (c *Counts) Record(outcome Outcome) {
	switch outcome {
	case OutcomeBanned:
		c.Banned.Add(1)
	case OutcomeSkippedNotMember:
		c.SkippedNotMember.Add(1)
	case OutcomeSkippedInvalidUser:
		c.SkippedInvalidUser.Add(1)
	case OutcomeSkippedMissingPermission:
		c.SkippedMissingPermission.Add(1)
	case OutcomeSkippedBanListFull:
		c.SkippedBanListFull.Add(1)
	case OutcomeUnexpectedError:
		c.UnexpectedErrors.Add(1)
	}
}

// Session is one in-flight or completed ban sweep: a guild, the flagged
// candidates from one raid log, the membership snapshot the sweep works
// against, and the accumulated results. A session is owned by the shard that
// owns its guild for its entire lifetime; nothing outside the executor and
// the member-leave observer mutates it.
type Session struct {
	ID         uuid.UUID
	GuildID    snowflake.ID
	LogURL     string
	Candidates []snowflake.ID // Oldest-flagged first.
	Counts     Counts

	credentials []*Credential

	mu       sync.RWMutex
	members  map[snowflake.ID]struct{}
	bannedID []snowflake.ID
}

// NewSession creates a session over the given candidates. The credential
// pool is fixed for the session's lifetime and must already be filtered to
// accounts that are members of the target guild.
func NewSession(
	guildID snowflake.ID, logURL string, candidates []snowflake.ID, credentials []*Credential,
) *Session {
	return &Session{
		ID:          uuid.New(),
		GuildID:     guildID,
		LogURL:      logURL,
		Candidates:  candidates,
		credentials: credentials,
	}
}

// Credentials returns the session's fixed credential pool.
func (s *Session) Credentials() []*Credential {
	return s.credentials
}

// SetMembership installs the membership snapshot taken at sweep start.
func (s *Session) SetMembership(ids []snowflake.ID) {
	members := make(map[snowflake.ID]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}

	s.mu.Lock()
	s.members = members
	s.mu.Unlock()
}

// IsMember reports whether a user is still in the membership snapshot.
func (s *Session) IsMember(id snowflake.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[id]

	return ok
}

// RemoveMember removes a departed user from the snapshot. Idempotent;
// removal is monotonic, membership is never re-added during a sweep.
func (s *Session) RemoveMember(id snowflake.ID) {
	s.mu.Lock()
	delete(s.members, id)
	s.mu.Unlock()
}

// MemberCandidates returns the candidates currently present in the
// membership snapshot, preserving candidate order.
func (s *Session) MemberCandidates() []snowflake.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	toBan := make([]snowflake.ID, 0, len(s.Candidates))

	for _, id := range s.Candidates {
		if _, ok := s.members[id]; ok {
			toBan = append(toBan, id)
		}
	}

	return toBan
}

// RecordBan appends a successfully banned user. Accumulation order reflects
// completion order, not candidate order.
func (s *Session) RecordBan(id snowflake.ID) {
	s.mu.Lock()
	s.bannedID = append(s.bannedID, id)
	s.mu.Unlock()

	s.Counts.Record(OutcomeBanned)
}

// BannedIDs returns a copy of the successfully banned users so far.
func (s *Session) BannedIDs() []snowflake.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]snowflake.ID, len(s.bannedID))
	copy(out, s.bannedID)

	return out
}
