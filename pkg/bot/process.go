package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/hybridkit/pkg/command"
)

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.ProcessMessage(s, m)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.ProcessInteraction(s, i)
}

// ProcessMessage runs the prefix dispatch pipeline for one message: resolve
// the prefix, split the command word, descend into groups word by word,
// evaluate the global once-checks, and invoke. Failures go through the
// command's error dispatch path; an unmatched word goes to the bot-level
// sink as NotFoundError.
func (b *Bot) ProcessMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s != nil && s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	prefix, rest, ok := b.matchPrefix(s, m)
	if !ok {
		return
	}
	invoked, rest := splitWord(rest)
	if invoked == "" {
		return
	}

	member := b.registry.Get(invoked)
	if member == nil {
		ctx := b.messageContext(s, m, prefix, invoked, rest)
		b.OnCommandError(ctx, &command.NotFoundError{Name: invoked})
		return
	}

	if b.settings != nil && m.GuildID != "" {
		root := headOf(member).Name
		if disabled, err := b.settings.CommandDisabled(m.GuildID, root); err == nil && disabled {
			ctx := b.messageContext(s, m, prefix, invoked, rest)
			b.OnCommandError(ctx, &command.DisabledError{Command: root})
			return
		}
	}

	cmd, path, rest, found := descend(member, invoked, rest)
	if !found {
		ctx := b.messageContext(s, m, prefix, path, rest)
		b.OnCommandError(ctx, &command.NotFoundError{Name: path})
		return
	}

	ctx := b.messageContext(s, m, prefix, path, rest)
	ctx.Command = cmd
	if ok, err := b.CanRun(ctx, true); err != nil || !ok {
		if err == nil {
			err = &command.CheckError{Command: cmd.QualifiedName()}
		}
		cmd.DispatchError(ctx, err)
		return
	}
	if err := cmd.Invoke(ctx); err != nil {
		cmd.DispatchError(ctx, err)
	}
}

// ProcessInteraction routes a command interaction into the tree, after the
// per-guild disabled gate.
func (b *Bot) ProcessInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if b.settings != nil && i.GuildID != "" {
		name := i.ApplicationCommandData().Name
		if disabled, err := b.settings.CommandDisabled(i.GuildID, name); err == nil && disabled {
			ctx := command.NewInteractionContext(s, i)
			ctx.Bot = b
			b.OnCommandError(ctx, &command.DisabledError{Command: name})
			return
		}
	}
	b.tree.Dispatch(s, i)
}

func (b *Bot) messageContext(s *discordgo.Session, m *discordgo.MessageCreate, prefix, invokedWith, rawArgs string) *command.Context {
	ctx := command.NewMessageContext(s, m.Message, prefix, invokedWith, rawArgs)
	ctx.Bot = b
	return ctx
}

// matchPrefix finds the first resolved prefix the message starts with and
// returns the remainder after it.
func (b *Bot) matchPrefix(s *discordgo.Session, m *discordgo.MessageCreate) (string, string, bool) {
	for _, p := range b.resolvePrefixes(s, m) {
		if p != "" && strings.HasPrefix(m.Content, p) {
			return p, m.Content[len(p):], true
		}
	}
	return "", "", false
}

// resolvePrefixes lists the prefixes valid for this message: the bot
// mention forms, then the guild override or the configured default. A
// custom resolver replaces all of it.
func (b *Bot) resolvePrefixes(s *discordgo.Session, m *discordgo.MessageCreate) []string {
	if b.resolver != nil {
		return b.resolver(s, m)
	}
	prefixes := make([]string, 0, 3)
	if s != nil && s.State != nil && s.State.User != nil {
		id := s.State.User.ID
		prefixes = append(prefixes, "<@"+id+"> ", "<@!"+id+"> ")
	}
	prefix := b.prefix
	if b.settings != nil && m.GuildID != "" {
		if override, err := b.settings.GuildPrefix(m.GuildID); err == nil && override != "" {
			prefix = override
		}
	}
	if prefix != "" {
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}

// descend walks group members word by word. It returns the resolved leaf,
// the matched word path, and the unconsumed remainder. A group whose next
// word matches no child runs its own callback when it has one; otherwise
// the walk fails with the word that had no match.
func descend(member command.Member, invoked, rest string) (*command.Command, string, string, bool) {
	path := invoked
	for {
		switch v := member.(type) {
		case *command.Command:
			return v, path, rest, true
		case *command.Group:
			next, after := splitWord(rest)
			if next != "" {
				if child := v.Lookup(next); child != nil {
					member = child
					path += " " + next
					rest = after
					continue
				}
			}
			if v.Run != nil {
				return &v.Command, path, rest, true
			}
			if next == "" {
				return nil, path, rest, false
			}
			return nil, path + " " + next, after, false
		default:
			return nil, path, rest, false
		}
	}
}

// splitWord peels the first whitespace-delimited word off s.
func splitWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}
