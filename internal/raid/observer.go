package raid

import (
	"errors"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// ErrSweepActive is returned when a second sweep is started for a guild that
// already has one running. At most one session per guild may be active; a
// duplicate signal for the same raid carries no extra work.
var ErrSweepActive = errors.New("a ban sweep is already active for this guild")

// Registry tracks the active session per guild for the duration of its
// sweep. It doubles as the live membership observer: the gateway's member
// leave events are fanned into whichever session covers the guild, keeping
// in-flight ban decisions aware of users who self-escape mid-sweep.
type Registry struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[snowflake.ID]*Session),
	}
}

// Begin registers a session as the guild's active sweep. Returns
// ErrSweepActive if the guild already has one.
func (r *Registry) Begin(session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, active := r.sessions[session.GuildID]; active {
		return ErrSweepActive
	}

	r.sessions[session.GuildID] = session

	return nil
}

// End removes the guild's active sweep. Idempotent.
func (r *Registry) End(guildID snowflake.ID) {
	r.mu.Lock()
	delete(r.sessions, guildID)
	r.mu.Unlock()
}

// NotifyLeave removes a departed member from the guild's active session, if
// any. A no-op for guilds without a running sweep and for IDs already gone
// from the snapshot.
func (r *Registry) NotifyLeave(guildID, userID snowflake.ID) {
	r.mu.Lock()
	session := r.sessions[guildID]
	r.mu.Unlock()

	if session != nil {
		session.RemoveMember(userID)
	}
}
