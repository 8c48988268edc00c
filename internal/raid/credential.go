package raid

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Banner issues one ban request against the platform's REST API. Each
// implementation carries its own authentication and therefore its own
// rate-limit budget.
type Banner interface {
	// Ban bans the user from the guild, deleting their recent messages.
	Ban(ctx context.Context, guildID, userID snowflake.ID, reason string) error

	// InGuild reports whether the credential's own account is a member of
	// the guild. A credential outside the guild cannot ban anyone in it.
	InGuild(ctx context.Context, guildID snowflake.ID) (bool, error)
}

// Credential is one independent bot account usable for ban requests.
type Credential struct {
	// UserID is the credential's own account ID.
	UserID snowflake.ID
	// Label identifies the credential in logs, never the token itself.
	Label string

	Banner Banner
}

// Pool holds every configured ban credential for the process.
type Pool struct {
	credentials []*Credential
	logger      *zap.Logger
}

// NewPool creates a credential pool.
func NewPool(credentials []*Credential, logger *zap.Logger) *Pool {
	return &Pool{
		credentials: credentials,
		logger:      logger.Named("credential_pool"),
	}
}

// Size returns the number of configured credentials.
func (p *Pool) Size() int {
	return len(p.credentials)
}

// ForGuild returns the credentials whose accounts are members of the guild,
// in configuration order. Membership lookups run concurrently since each
// credential queries with its own budget. A lookup failure excludes the
// credential rather than failing the sweep.
func (p *Pool) ForGuild(ctx context.Context, guildID snowflake.ID) []*Credential {
	eligible := make([]*Credential, len(p.credentials))

	wp := pool.New().WithContext(ctx)

	for i, cred := range p.credentials {
		wp.Go(func(ctx context.Context) error {
			inGuild, err := cred.Banner.InGuild(ctx, guildID)
			if err != nil {
				p.logger.Warn("Excluding credential, membership lookup failed",
					zap.String("credential", cred.Label),
					zap.Uint64("guildID", uint64(guildID)),
					zap.Error(err))
				return nil
			}

			if inGuild {
				eligible[i] = cred
			}

			return nil
		})
	}

	_ = wp.Wait()

	// Compact while preserving configuration order.
	out := make([]*Credential, 0, len(eligible))

	for _, cred := range eligible {
		if cred != nil {
			out = append(out, cred)
		}
	}

	return out
}
