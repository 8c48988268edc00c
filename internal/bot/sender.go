package bot

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// MessageSender posts report embeds through the primary client.
type MessageSender struct {
	client bot.Client
}

// NewMessageSender creates a sender over the primary client.
func NewMessageSender(client bot.Client) *MessageSender {
	return &MessageSender{client: client}
}

// SendEmbed posts a single embed to the channel.
func (s *MessageSender) SendEmbed(ctx context.Context, channelID snowflake.ID, embed discord.Embed) error {
	_, err := s.client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to send embed to channel %d: %w", channelID, err)
	}

	return nil
}
