package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

const (
	jsonErrUnknownChannel = 10003
	jsonErrUnknownGuild   = 10004
	jsonErrUnknownMember  = 10007
	jsonErrMissingAccess  = 50001
)

// GuildAccessor answers permission and channel questions for the primary
// account over the Discord REST API.
type GuildAccessor struct {
	client bot.Client
	selfID snowflake.ID
}

// NewGuildAccessor creates an accessor for the given client's own account.
func NewGuildAccessor(client bot.Client, selfID snowflake.ID) *GuildAccessor {
	return &GuildAccessor{
		client: client,
		selfID: selfID,
	}
}

// HasBanPermission reports whether the bot's account may issue bans in the
// guild, either through ownership or guild-level role permissions.
func (g *GuildAccessor) HasBanPermission(ctx context.Context, guildID snowflake.ID) (bool, error) {
	guild, err := g.client.Rest().GetGuild(guildID, false, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get guild: %w", err)
	}

	if guild.OwnerID == g.selfID {
		return true, nil
	}

	member, err := g.client.Rest().GetMember(guildID, g.selfID, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get own member: %w", err)
	}

	permissions := basePermissions(guild.Roles, guildID, member.RoleIDs)

	return permissions.Has(discord.PermissionBanMembers), nil
}

// ChannelExists reports whether the channel still exists and belongs to the
// guild. A deleted channel is a normal outcome, not an error.
func (g *GuildAccessor) ChannelExists(ctx context.Context, guildID, channelID snowflake.ID) (bool, error) {
	channel, err := g.client.Rest().GetChannel(channelID, rest.WithCtx(ctx))
	if err != nil {
		var restErr rest.Error
		if errors.As(err, &restErr) {
			switch int(restErr.Code) {
			case jsonErrUnknownChannel, jsonErrMissingAccess:
				return false, nil
			}
		}

		return false, fmt.Errorf("failed to get channel: %w", err)
	}

	guildChannel, ok := channel.(discord.GuildChannel)
	if !ok || guildChannel.GuildID() != guildID {
		return false, nil
	}

	return true, nil
}

// CanViewAndSend reports whether the bot's account may both read and post in
// the channel once overwrites are applied.
func (g *GuildAccessor) CanViewAndSend(ctx context.Context, guildID, channelID snowflake.ID) (bool, error) {
	guild, err := g.client.Rest().GetGuild(guildID, false, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get guild: %w", err)
	}

	member, err := g.client.Rest().GetMember(guildID, g.selfID, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get own member: %w", err)
	}

	channel, err := g.client.Rest().GetChannel(channelID, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get channel: %w", err)
	}

	guildChannel, ok := channel.(discord.GuildChannel)
	if !ok {
		return false, nil
	}

	base := basePermissions(guild.Roles, guildID, member.RoleIDs)
	if guild.OwnerID == g.selfID {
		base = discord.PermissionsAll
	}

	permissions := channelPermissions(
		base, guildChannel.PermissionOverwrites(), guildID, g.selfID, member.RoleIDs)

	return permissions.Has(discord.PermissionViewChannel, discord.PermissionSendMessages), nil
}
