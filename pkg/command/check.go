package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// GuildOnly fails any invocation that does not originate inside a guild.
func GuildOnly() Check {
	return func(ctx *Context) (bool, error) {
		if ctx.GuildID() == "" {
			return false, &CheckError{Reason: "this command can only be used in a server"}
		}
		return true, nil
	}
}

// IsOwner passes only for the given user IDs.
func IsOwner(ownerIDs ...string) Check {
	return func(ctx *Context) (bool, error) {
		author := ctx.Author()
		if author == nil {
			return false, nil
		}
		for _, id := range ownerIDs {
			if author.ID == id {
				return true, nil
			}
		}
		return false, nil
	}
}

// HasPermissions requires the invoker to hold every bit of perms in the
// current channel.
func HasPermissions(perms int64) Check {
	return func(ctx *Context) (bool, error) {
		author := ctx.Author()
		if author == nil || ctx.Session == nil {
			return false, nil
		}
		have, err := ctx.Session.UserChannelPermissions(author.ID, ctx.ChannelID())
		if err != nil {
			return false, fmt.Errorf("resolving channel permissions: %w", err)
		}
		return have&perms == perms, nil
	}
}

// HasRole requires the invoking member to carry the given role.
func HasRole(roleID string) Check {
	return func(ctx *Context) (bool, error) {
		var member *discordgo.Member
		if ctx.Interaction != nil {
			member = ctx.Interaction.Member
		} else if ctx.Message != nil {
			member = ctx.Message.Member
		}
		if member == nil {
			return false, nil
		}
		for _, r := range member.Roles {
			if r == roleID {
				return true, nil
			}
		}
		return false, nil
	}
}
