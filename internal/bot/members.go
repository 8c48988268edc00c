package bot

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// memberPageSize is the maximum page size accepted by the member list endpoint.
const memberPageSize = 1000

// MemberLister pages through a guild's full member list over REST.
type MemberLister struct {
	client bot.Client
}

// NewMemberLister creates a lister over the primary client.
func NewMemberLister(client bot.Client) *MemberLister {
	return &MemberLister{client: client}
}

// ListMemberIDs returns the IDs of every current guild member.
func (l *MemberLister) ListMemberIDs(ctx context.Context, guildID snowflake.ID) ([]snowflake.ID, error) {
	var memberIDs []snowflake.ID

	after := snowflake.ID(0)

	for {
		chunk, err := l.client.Rest().GetMembers(guildID, memberPageSize, after, rest.WithCtx(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to get members after %d: %w", after, err)
		}

		for _, member := range chunk {
			memberIDs = append(memberIDs, member.User.ID)
		}

		if len(chunk) < memberPageSize {
			break
		}

		after = chunk[len(chunk)-1].User.ID
	}

	return memberIDs, nil
}
