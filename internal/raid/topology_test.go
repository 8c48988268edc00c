package raid_test

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/hiveguard/hiveguard/internal/raid"
	"github.com/stretchr/testify/assert"
)

func TestOwnerOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		shardCount int
		guildID    snowflake.ID
		want       int
	}{
		{
			name:       "single shard owns everything",
			shardCount: 1,
			guildID:    snowflake.ID(1196800461281355827),
			want:       0,
		},
		{
			name:       "zero shard count treated as one",
			shardCount: 0,
			guildID:    snowflake.ID(1196800461281355827),
			want:       0,
		},
		{
			name:       "timestamp bits select the shard",
			shardCount: 4,
			guildID:    snowflake.ID(16 << 22), // worker/process/increment bits zeroed
			want:       0,
		},
		{
			name:       "low 22 bits never matter",
			shardCount: 4,
			guildID:    snowflake.ID(17<<22 | 0x3FFFFF),
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			topology := raid.Topology{ShardCount: tt.shardCount}
			assert.Equal(t, tt.want, topology.OwnerOf(tt.guildID))
		})
	}
}

func TestOwnerOfMatchesGatewayFormula(t *testing.T) {
	t.Parallel()

	topology := raid.Topology{ShardCount: 16}

	for _, guildID := range []snowflake.ID{
		466905143279939595,
		1196800461281355827,
		297153970613387264,
	} {
		want := int((uint64(guildID) >> 22) % 16)
		assert.Equal(t, want, topology.OwnerOf(guildID))
	}
}
