package raid_test

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/hiveguard/hiveguard/internal/raid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// membershipBanner answers InGuild from a fixed set of guilds.
type membershipBanner struct {
	guilds map[snowflake.ID]bool
	err    error
}

func (m *membershipBanner) Ban(context.Context, snowflake.ID, snowflake.ID, string) error {
	return nil
}

func (m *membershipBanner) InGuild(_ context.Context, guildID snowflake.ID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}

	return m.guilds[guildID], nil
}

func TestPoolForGuild(t *testing.T) {
	t.Parallel()

	inGuild := &membershipBanner{guilds: map[snowflake.ID]bool{100: true}}
	outside := &membershipBanner{guilds: map[snowflake.ID]bool{}}
	broken := &membershipBanner{err: errors.New("api unavailable")}

	credentials := []*raid.Credential{
		{UserID: 1, Label: "primary", Banner: inGuild},
		{UserID: 2, Label: "credential_1", Banner: outside},
		{UserID: 3, Label: "credential_2", Banner: broken},
		{UserID: 4, Label: "credential_3", Banner: inGuild},
	}

	pool := raid.NewPool(credentials, zap.NewNop())
	assert.Equal(t, 4, pool.Size())

	eligible := pool.ForGuild(t.Context(), 100)

	// Only members survive, failures are excluded, and configuration order
	// is preserved so the rotation order is stable across sweeps.
	assert.Len(t, eligible, 2)
	assert.Equal(t, snowflake.ID(1), eligible[0].UserID)
	assert.Equal(t, snowflake.ID(4), eligible[1].UserID)
}

func TestPoolForGuildEmpty(t *testing.T) {
	t.Parallel()

	outside := &membershipBanner{guilds: map[snowflake.ID]bool{}}
	pool := raid.NewPool([]*raid.Credential{
		{UserID: 1, Label: "primary", Banner: outside},
	}, zap.NewNop())

	assert.Empty(t, pool.ForGuild(t.Context(), 100))
}
