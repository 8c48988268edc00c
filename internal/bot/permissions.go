package bot

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// basePermissions computes a member's guild-level permissions from the guild
// role list. The everyone role shares the guild's ID.
func basePermissions(roles []discord.Role, guildID snowflake.ID, memberRoleIDs []snowflake.ID) discord.Permissions {
	var permissions discord.Permissions

	for _, role := range roles {
		if role.ID == guildID {
			permissions = permissions.Add(role.Permissions)
			continue
		}

		for _, roleID := range memberRoleIDs {
			if role.ID == roleID {
				permissions = permissions.Add(role.Permissions)
				break
			}
		}
	}

	if permissions.Has(discord.PermissionAdministrator) {
		return discord.PermissionsAll
	}

	return permissions
}

// channelPermissions applies a channel's permission overwrites on top of the
// member's base permissions, per the documented overwrite order: everyone
// overwrite, then the union of role overwrites, then the member overwrite.
func channelPermissions(
	base discord.Permissions,
	overwrites []discord.PermissionOverwrite,
	guildID, userID snowflake.ID,
	memberRoleIDs []snowflake.ID,
) discord.Permissions {
	if base.Has(discord.PermissionAdministrator) {
		return discord.PermissionsAll
	}

	permissions := base

	var roleAllow, roleDeny discord.Permissions

	for _, overwrite := range overwrites {
		switch ow := overwrite.(type) {
		case discord.RolePermissionOverwrite:
			if ow.RoleID == guildID {
				permissions = permissions.Remove(ow.Deny).Add(ow.Allow)
				continue
			}

			for _, roleID := range memberRoleIDs {
				if ow.RoleID == roleID {
					roleAllow = roleAllow.Add(ow.Allow)
					roleDeny = roleDeny.Add(ow.Deny)

					break
				}
			}
		}
	}

	permissions = permissions.Remove(roleDeny).Add(roleAllow)

	for _, overwrite := range overwrites {
		if ow, ok := overwrite.(discord.MemberPermissionOverwrite); ok && ow.UserID == userID {
			permissions = permissions.Remove(ow.Deny).Add(ow.Allow)
			break
		}
	}

	return permissions
}
