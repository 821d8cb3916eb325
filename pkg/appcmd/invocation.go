package appcmd

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

var respondInteraction = func(s *discordgo.Session, i *discordgo.Interaction, r *discordgo.InteractionResponse) error {
	return s.InteractionRespond(i, r)
}

// Invocation carries one application-command interaction through dispatch.
type Invocation struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	// Command is the resolved leaf command.
	Command *Command

	// Namespace holds the decoded option values keyed by option name. It is
	// populated by option binding, before the handler runs.
	Namespace Namespace

	// Baton carries opaque adapter state for bridged surfaces.
	Baton any

	tree       *Tree
	rawOptions []*discordgo.ApplicationCommandInteractionDataOption
}

// NewInvocation builds an invocation outside tree dispatch, for adapters and
// tests. Option binding does not happen here.
func NewInvocation(s *discordgo.Session, i *discordgo.InteractionCreate, c *Command) *Invocation {
	inv := &Invocation{Session: s, Interaction: i, Command: c}
	if i != nil && i.Type == discordgo.InteractionApplicationCommand {
		data := i.ApplicationCommandData()
		inv.rawOptions = leafOptions(data.Options)
	}
	return inv
}

// Client returns the dispatcher bound to the owning tree, or nil. Adapters
// type-assert it to reach host capabilities.
func (inv *Invocation) Client() any {
	if inv.tree == nil {
		return nil
	}
	return inv.tree.Client()
}

// Tree returns the tree that dispatched this invocation, or nil.
func (inv *Invocation) Tree() *Tree { return inv.tree }

// Data returns the application-command payload of the interaction.
func (inv *Invocation) Data() discordgo.ApplicationCommandInteractionData {
	return inv.Interaction.ApplicationCommandData()
}

// GuildID returns the guild the interaction happened in, or "" in DMs.
func (inv *Invocation) GuildID() string {
	if inv.Interaction == nil {
		return ""
	}
	return inv.Interaction.GuildID
}

// ChannelID returns the originating channel.
func (inv *Invocation) ChannelID() string {
	if inv.Interaction == nil {
		return ""
	}
	return inv.Interaction.ChannelID
}

// Sender returns the invoking user.
func (inv *Invocation) Sender() *discordgo.User {
	if inv.Interaction == nil {
		return nil
	}
	if inv.Interaction.Member != nil {
		return inv.Interaction.Member.User
	}
	return inv.Interaction.User
}

// ResolvedUser returns the user carried in the payload's resolved data, or
// nil.
func (inv *Invocation) ResolvedUser(id string) *discordgo.User {
	return resolvedUser(inv, id)
}

// ResolvedMember returns the member carried in the payload's resolved data,
// with its User field filled in when the payload split them apart.
func (inv *Invocation) ResolvedMember(id string) *discordgo.Member {
	r := resolved(inv)
	if r == nil {
		return nil
	}
	m, ok := r.Members[id]
	if !ok {
		return nil
	}
	if m.User == nil {
		if u, ok := r.Users[id]; ok {
			m.User = u
		}
	}
	return m
}

// ResolvedRole returns the role carried in the payload's resolved data, or
// nil.
func (inv *Invocation) ResolvedRole(id string) *discordgo.Role {
	r := resolved(inv)
	if r == nil {
		return nil
	}
	return r.Roles[id]
}

// ResolvedChannel returns the channel carried in the payload's resolved
// data, or nil.
func (inv *Invocation) ResolvedChannel(id string) *discordgo.Channel {
	r := resolved(inv)
	if r == nil {
		return nil
	}
	return r.Channels[id]
}

// Respond sends the initial interaction response.
func (inv *Invocation) Respond(content string, ephemeral bool) error {
	if inv.Session == nil || inv.Interaction == nil {
		return errors.New("invocation has no session")
	}
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return respondInteraction(inv.Session, inv.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: flags},
	})
}

// leafOptions descends through subcommand levels to the options of the
// invoked leaf.
func leafOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) []*discordgo.ApplicationCommandInteractionDataOption {
	for len(opts) == 1 {
		switch opts[0].Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			opts = opts[0].Options
		default:
			return opts
		}
	}
	return opts
}
