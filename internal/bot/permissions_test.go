package bot

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

const (
	testGuildID  = snowflake.ID(100)
	testUserID   = snowflake.ID(200)
	testModRole  = snowflake.ID(300)
	testMuteRole = snowflake.ID(400)
)

func testRoles() []discord.Role {
	return []discord.Role{
		{ID: testGuildID, Permissions: discord.PermissionViewChannel | discord.PermissionSendMessages},
		{ID: testModRole, Permissions: discord.PermissionBanMembers},
		{ID: testMuteRole, Permissions: 0},
	}
}

func TestBasePermissions(t *testing.T) {
	t.Parallel()

	t.Run("everyone role always applies", func(t *testing.T) {
		t.Parallel()

		permissions := basePermissions(testRoles(), testGuildID, nil)
		assert.True(t, permissions.Has(discord.PermissionViewChannel))
		assert.False(t, permissions.Has(discord.PermissionBanMembers))
	})

	t.Run("member roles union in", func(t *testing.T) {
		t.Parallel()

		permissions := basePermissions(testRoles(), testGuildID, []snowflake.ID{testModRole})
		assert.True(t, permissions.Has(discord.PermissionBanMembers))
		assert.True(t, permissions.Has(discord.PermissionViewChannel))
	})

	t.Run("administrator grants everything", func(t *testing.T) {
		t.Parallel()

		roles := append(testRoles(), discord.Role{
			ID:          500,
			Permissions: discord.PermissionAdministrator,
		})

		permissions := basePermissions(roles, testGuildID, []snowflake.ID{500})
		assert.Equal(t, discord.PermissionsAll, permissions)
	})
}

func TestChannelPermissions(t *testing.T) {
	t.Parallel()

	base := discord.PermissionViewChannel | discord.PermissionSendMessages

	t.Run("no overwrites keeps base", func(t *testing.T) {
		t.Parallel()

		permissions := channelPermissions(base, nil, testGuildID, testUserID, nil)
		assert.True(t, permissions.Has(discord.PermissionViewChannel, discord.PermissionSendMessages))
	})

	t.Run("everyone deny removes access", func(t *testing.T) {
		t.Parallel()

		overwrites := []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{RoleID: testGuildID, Deny: discord.PermissionSendMessages},
		}

		permissions := channelPermissions(base, overwrites, testGuildID, testUserID, nil)
		assert.True(t, permissions.Has(discord.PermissionViewChannel))
		assert.False(t, permissions.Has(discord.PermissionSendMessages))
	})

	t.Run("role allow beats everyone deny", func(t *testing.T) {
		t.Parallel()

		overwrites := []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{RoleID: testGuildID, Deny: discord.PermissionSendMessages},
			discord.RolePermissionOverwrite{RoleID: testModRole, Allow: discord.PermissionSendMessages},
		}

		permissions := channelPermissions(
			base, overwrites, testGuildID, testUserID, []snowflake.ID{testModRole})
		assert.True(t, permissions.Has(discord.PermissionSendMessages))
	})

	t.Run("unrelated role overwrites are ignored", func(t *testing.T) {
		t.Parallel()

		overwrites := []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{RoleID: testMuteRole, Deny: discord.PermissionSendMessages},
		}

		permissions := channelPermissions(base, overwrites, testGuildID, testUserID, nil)
		assert.True(t, permissions.Has(discord.PermissionSendMessages))
	})

	t.Run("member overwrite wins last", func(t *testing.T) {
		t.Parallel()

		overwrites := []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{RoleID: testModRole, Allow: discord.PermissionSendMessages},
			discord.MemberPermissionOverwrite{UserID: testUserID, Deny: discord.PermissionSendMessages},
		}

		permissions := channelPermissions(
			base, overwrites, testGuildID, testUserID, []snowflake.ID{testModRole})
		assert.False(t, permissions.Has(discord.PermissionSendMessages))
	})

	t.Run("administrator ignores overwrites", func(t *testing.T) {
		t.Parallel()

		overwrites := []discord.PermissionOverwrite{
			discord.RolePermissionOverwrite{RoleID: testGuildID, Deny: discord.PermissionsAll},
		}

		permissions := channelPermissions(
			discord.PermissionAdministrator, overwrites, testGuildID, testUserID, nil)
		assert.Equal(t, discord.PermissionsAll, permissions)
	})
}
