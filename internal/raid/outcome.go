package raid

// AbortReason classifies why a raid signal was dropped before any ban
// request was issued. Consumed by the stats counters.
type AbortReason int

const (
	// AbortMissingBanPermission indicates the bot's own account lacks ban
	// authority in the target guild.
	AbortMissingBanPermission AbortReason = iota
	// AbortNoActionLog indicates no action log channel is configured for the
	// guild, or the configured channel no longer exists.
	AbortNoActionLog
	// AbortMissingViewSendPermission indicates the bot cannot view or post in
	// the configured action log channel.
	AbortMissingViewSendPermission
	// AbortNoMembersToBan indicates none of the flagged users are still
	// members of the guild. This is a successful no-op, not an error.
	AbortNoMembersToBan
)

// String returns the snake_case form used as a stats field name.
func (r AbortReason) String() string {
	switch r {
	case AbortMissingBanPermission:
		return "missing_ban_permission"
	case AbortNoActionLog:
		return "no_action_log"
	case AbortMissingViewSendPermission:
		return "missing_view_send_permission"
	case AbortNoMembersToBan:
		return "no_members_to_ban"
	default:
		return "unknown"
	}
}

// Outcome classifies the result of a single ban attempt within a sweep.
type Outcome int

const (
	// OutcomeBanned indicates the candidate was banned successfully.
	OutcomeBanned Outcome = iota
	// OutcomeSkippedNotMember indicates the candidate left the guild before
	// a ban request was dispatched; no request was issued.
	OutcomeSkippedNotMember
	// OutcomeSkippedInvalidUser indicates the platform reported the candidate
	// as a nonexistent user.
	OutcomeSkippedInvalidUser
	// OutcomeSkippedMissingPermission indicates the credential could not ban
	// this particular candidate. Per-target; the sweep continues.
	OutcomeSkippedMissingPermission
	// OutcomeSkippedBanListFull indicates the guild's ban list capacity was
	// reached. Sweep-fatal: all further dispatch halts.
	OutcomeSkippedBanListFull
	// OutcomeUnexpectedError indicates an unclassified failure for this
	// candidate. Logged with full context; the sweep continues.
	OutcomeUnexpectedError
)

// String returns the snake_case form used as a stats field name.
func (o Outcome) String() string {
	switch o {
	case OutcomeBanned:
		return "banned"
	case OutcomeSkippedNotMember:
		return "skipped_not_member"
	case OutcomeSkippedInvalidUser:
		return "skipped_invalid_user"
	case OutcomeSkippedMissingPermission:
		return "skipped_missing_permission"
	case OutcomeSkippedBanListFull:
		return "skipped_ban_list_full"
	case OutcomeUnexpectedError:
		return "unexpected_error"
	default:
		return "unknown"
	}
}

// Fatal reports whether this outcome halts all further dispatch for the
// session. Only ban-list capacity exhaustion qualifies; every subsequent
// attempt would fail identically.
func (o Outcome) Fatal() bool {
	return o == OutcomeSkippedBanListFull
}
