package command

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

// Network calls go through these so tests can stub the wire without a live
// session.
var (
	respondInteraction = func(s *discordgo.Session, i *discordgo.Interaction, r *discordgo.InteractionResponse) error {
		return s.InteractionRespond(i, r)
	}
	followupInteraction = func(s *discordgo.Session, i *discordgo.Interaction, p *discordgo.WebhookParams) (*discordgo.Message, error) {
		return s.FollowupMessageCreate(i, true, p)
	}
	sendChannelMessage = func(s *discordgo.Session, channelID string, m *discordgo.MessageSend) (*discordgo.Message, error) {
		return s.ChannelMessageSendComplex(channelID, m)
	}
	typingIndicator = func(s *discordgo.Session, channelID string) error {
		return s.ChannelTyping(channelID)
	}
)

// Context is the unified invocation context shared by both surfaces. Exactly
// one of Message and Interaction is set, depending on where the invocation
// originated. One context serves one invocation on one goroutine.
type Context struct {
	context.Context

	Session     *discordgo.Session
	Message     *discordgo.Message
	Interaction *discordgo.InteractionCreate

	// Bot is the owning dispatcher; nil when the context is built by hand.
	Bot Bot

	// Command is the command currently being invoked.
	Command *Command

	// Prefix and InvokedWith record how the command was reached.
	Prefix      string
	InvokedWith string

	// Args holds parsed arguments keyed by parameter name.
	Args map[string]any

	// Baton carries opaque adapter state for bridged surfaces.
	Baton any

	view      *StringView
	responded bool
}

// NewMessageContext builds a context for a prefix invocation. rawArgs is the
// message remainder after the command word.
func NewMessageContext(s *discordgo.Session, m *discordgo.Message, prefix, invokedWith, rawArgs string) *Context {
	return &Context{
		Context:     context.Background(),
		Session:     s,
		Message:     m,
		Prefix:      prefix,
		InvokedWith: invokedWith,
		view:        NewStringView(rawArgs),
	}
}

// NewInteractionContext builds a context for a structured invocation.
func NewInteractionContext(s *discordgo.Session, i *discordgo.InteractionCreate) *Context {
	ctx := &Context{
		Context:     context.Background(),
		Session:     s,
		Interaction: i,
		Prefix:      "/",
	}
	if i != nil && i.Type == discordgo.InteractionApplicationCommand {
		ctx.InvokedWith = i.ApplicationCommandData().Name
	}
	return ctx
}

// GuildID returns the guild the invocation happened in, or "" in DMs.
func (c *Context) GuildID() string {
	if c.Interaction != nil {
		return c.Interaction.GuildID
	}
	if c.Message != nil {
		return c.Message.GuildID
	}
	return ""
}

// ChannelID returns the originating channel.
func (c *Context) ChannelID() string {
	if c.Interaction != nil {
		return c.Interaction.ChannelID
	}
	if c.Message != nil {
		return c.Message.ChannelID
	}
	return ""
}

// Author returns the invoking user regardless of surface.
func (c *Context) Author() *discordgo.User {
	if c.Interaction != nil {
		if c.Interaction.Member != nil {
			return c.Interaction.Member.User
		}
		return c.Interaction.User
	}
	if c.Message != nil {
		return c.Message.Author
	}
	return nil
}

// Arg returns the parsed argument for name, or nil.
func (c *Context) Arg(name string) any { return c.Args[name] }

// String returns the named argument as a string.
func (c *Context) String(name string) string {
	v, _ := c.Args[name].(string)
	return v
}

// Int returns the named argument as an int64.
func (c *Context) Int(name string) int64 {
	switch v := c.Args[name].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

// Float returns the named argument as a float64.
func (c *Context) Float(name string) float64 {
	switch v := c.Args[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

// Bool returns the named argument as a bool.
func (c *Context) Bool(name string) bool {
	v, _ := c.Args[name].(bool)
	return v
}

// User returns the named argument as a user.
func (c *Context) User(name string) *discordgo.User {
	switch v := c.Args[name].(type) {
	case *discordgo.User:
		return v
	case *discordgo.Member:
		return v.User
	}
	return nil
}

// Reply sends content back on whichever surface the invocation came from:
// an interaction response (or followup once responded) on the structured
// path, a channel reply on the prefix path.
func (c *Context) Reply(content string) error {
	return c.reply(content, nil, false)
}

// ReplyEphemeral sends content visible only to the invoker. On the prefix
// path there is no ephemeral delivery, so it degrades to a normal reply.
func (c *Context) ReplyEphemeral(content string) error {
	return c.reply(content, nil, true)
}

// ReplyEmbed sends an embed on whichever surface the invocation came from.
func (c *Context) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	return c.reply("", embed, false)
}

func (c *Context) reply(content string, embed *discordgo.MessageEmbed, ephemeral bool) error {
	if c.Session == nil {
		return errors.New("context has no session")
	}
	var embeds []*discordgo.MessageEmbed
	if embed != nil {
		embeds = append(embeds, embed)
	}
	if c.Interaction != nil {
		var flags discordgo.MessageFlags
		if ephemeral {
			flags = discordgo.MessageFlagsEphemeral
		}
		if c.responded {
			_, err := followupInteraction(c.Session, c.Interaction.Interaction, &discordgo.WebhookParams{
				Content: content,
				Embeds:  embeds,
				Flags:   flags,
			})
			return err
		}
		err := respondInteraction(c.Session, c.Interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Embeds:  embeds,
				Flags:   flags,
			},
		})
		if err == nil {
			c.responded = true
		}
		return err
	}
	if c.Message == nil {
		return errors.New("context has no origin to reply to")
	}
	_, err := sendChannelMessage(c.Session, c.Message.ChannelID, &discordgo.MessageSend{
		Content:   content,
		Embeds:    embeds,
		Reference: c.Message.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: false,
		},
	})
	return err
}

// Defer acknowledges the invocation before slow work. The structured path
// sends a deferred response; the prefix path shows a typing indicator.
func (c *Context) Defer() error {
	if c.Session == nil {
		return errors.New("context has no session")
	}
	if c.Interaction != nil {
		err := respondInteraction(c.Session, c.Interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		})
		if err == nil {
			c.responded = true
		}
		return err
	}
	if c.Message == nil {
		return nil
	}
	return typingIndicator(c.Session, c.Message.ChannelID)
}
