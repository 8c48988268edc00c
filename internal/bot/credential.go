package bot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/hiveguard/hiveguard/internal/raid"
	"go.uber.org/zap"
)

// banDeleteMessageDuration is how far back a ban deletes the raider's
// messages. Raid spam is fresh, one week covers all of it.
const banDeleteMessageDuration = 7 * 24 * time.Hour

// ErrInvalidToken is returned when a credential token does not carry a
// decodable account ID.
var ErrInvalidToken = errors.New("token does not encode a user ID")

// RestBanner issues ban requests with its own token, giving the credential an
// independent rate-limit budget. Implements raid.Banner.
type RestBanner struct {
	rest   rest.Rest
	selfID snowflake.ID
}

// NewRestBanner creates a standalone REST credential from a bot token.
func NewRestBanner(token string) (*RestBanner, error) {
	selfID, err := userIDFromToken(token)
	if err != nil {
		return nil, err
	}

	return &RestBanner{
		rest:   rest.New(rest.NewClient(token)),
		selfID: selfID,
	}, nil
}

// SelfID returns the credential's own account ID.
func (b *RestBanner) SelfID() snowflake.ID {
	return b.selfID
}

// Ban bans the user from the guild and deletes their recent messages.
func (b *RestBanner) Ban(ctx context.Context, guildID, userID snowflake.ID, reason string) error {
	return b.rest.AddBan(guildID, userID, banDeleteMessageDuration,
		rest.WithCtx(ctx), rest.WithReason(reason))
}

// InGuild reports whether the credential's account is a member of the guild.
// Not being a member is a normal answer, not an error.
func (b *RestBanner) InGuild(ctx context.Context, guildID snowflake.ID) (bool, error) {
	_, err := b.rest.GetMember(guildID, b.selfID, rest.WithCtx(ctx))
	if err != nil {
		var restErr rest.Error
		if errors.As(err, &restErr) {
			switch int(restErr.Code) {
			case jsonErrUnknownGuild, jsonErrUnknownMember, jsonErrMissingAccess:
				return false, nil
			}
		}

		return false, fmt.Errorf("failed to get own member: %w", err)
	}

	return true, nil
}

// BuildCredentials assembles the ban credential pool. The primary token is
// always the first credential; the extra tokens follow in configuration
// order, which fixes the round-robin rotation order for every sweep.
func BuildCredentials(primaryToken string, extraTokens []string, logger *zap.Logger) ([]*raid.Credential, error) {
	tokens := append([]string{primaryToken}, extraTokens...)

	credentials := make([]*raid.Credential, 0, len(tokens))

	for i, token := range tokens {
		banner, err := NewRestBanner(token)
		if err != nil {
			return nil, fmt.Errorf("credential %d: %w", i, err)
		}

		label := "primary"
		if i > 0 {
			label = fmt.Sprintf("credential_%d", i)
		}

		credentials = append(credentials, &raid.Credential{
			UserID: banner.SelfID(),
			Label:  label,
			Banner: banner,
		})

		logger.Info("Registered ban credential",
			zap.String("credential", label),
			zap.Uint64("userID", uint64(banner.SelfID())))
	}

	return credentials, nil
}

// userIDFromToken decodes the account ID from a bot token's first segment,
// which is the base64-encoded snowflake.
func userIDFromToken(token string) (snowflake.ID, error) {
	segment, _, found := strings.Cut(token, ".")
	if !found || segment == "" {
		return 0, ErrInvalidToken
	}

	decoded, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(segment)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	id, err := snowflake.Parse(string(decoded))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return id, nil
}
