package raid

import "github.com/disgoorg/snowflake/v2"

// Topology describes how guilds are partitioned across shard processes.
// Injected rather than read from ambient process state so that ownership
// decisions are testable without a running cluster.
type Topology struct {
	ShardCount int
}

// OwnerOf returns the shard index that owns the given guild. Uses Discord's
// standard sharding formula so ownership always matches the gateway's own
// event partitioning.
func (t Topology) OwnerOf(guildID snowflake.ID) int {
	if t.ShardCount <= 1 {
		return 0
	}

	return int((uint64(guildID) >> 22) % uint64(t.ShardCount))
}
