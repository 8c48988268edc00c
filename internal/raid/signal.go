package raid

import (
	"regexp"

	"github.com/disgoorg/snowflake/v2"
)

// SignalType tags inter-shard payloads so unrelated messages on the same
// transport can be discarded.
const SignalType = "raid"

var (
	logURLPattern  = regexp.MustCompile(`https://logs\.beemo\.gg/antispam/\w+`)
	userIDPattern  = regexp.MustCompile(`\d{17,19}`)
	urlSpanPattern = regexp.MustCompile(`https://\S+`)
)

// Signal is the ephemeral raid notification extracted from a partner bot
// report. It is constructed once, routed to the shard that owns the guild,
// and consumed exactly once. Never persisted.
type Signal struct {
	Type        string       `json:"type"`
	GuildID     snowflake.ID `json:"guildId"`
	LogURL      string       `json:"logUrl"`
	Description string       `json:"description"`
}

// ParseSignal extracts a raid signal from the text of a partner bot report.
// The log URL must match the partner's fixed log host pattern, and the target
// guild is the first snowflake-shaped token that is not part of a URL.
// Returns false if either piece is missing.
func ParseSignal(description string) (*Signal, bool) {
	logURL := logURLPattern.FindString(description)
	if logURL == "" {
		return nil, false
	}

	// Blank out URLs so their path segments are not mistaken for a guild ID.
	stripped := urlSpanPattern.ReplaceAllString(description, "")

	rawID := userIDPattern.FindString(stripped)
	if rawID == "" {
		return nil, false
	}

	guildID, err := snowflake.Parse(rawID)
	if err != nil {
		return nil, false
	}

	return &Signal{
		Type:        SignalType,
		GuildID:     guildID,
		LogURL:      logURL,
		Description: description,
	}, true
}
