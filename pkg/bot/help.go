package bot

import (
	"fmt"
	"strings"

	"github.com/keshon/hybridkit/pkg/command"
)

// installHelp registers the built-in help command on the prefix surface.
func (b *Bot) installHelp() error {
	if b.noHelp {
		return nil
	}
	return b.AddTextCommand(&command.Command{
		Name:        "help",
		Description: "Lists commands, or shows how to use one.",
		Params: []*command.Param{
			{Name: "command", Description: "command to describe", Rest: true},
		},
		Run: b.runHelp,
	})
}

func (b *Bot) runHelp(ctx *command.Context) error {
	query := strings.TrimSpace(ctx.String("command"))
	if query == "" {
		return ctx.Reply(b.helpOverview(ctx.Prefix))
	}
	member, path := b.resolveHelpTarget(query)
	if member == nil {
		return ctx.Reply(fmt.Sprintf("No command called %q found.", path))
	}
	return ctx.Reply(helpEntry(member, ctx.Prefix, path))
}

// resolveHelpTarget walks the query words through the registry and returns
// the resolved member with its primary-name path, or nil and the path that
// failed.
func (b *Bot) resolveHelpTarget(query string) (command.Member, string) {
	word, rest := splitWord(query)
	member := b.registry.Get(word)
	if member == nil {
		return nil, word
	}
	path := headOf(member).Name
	for rest != "" {
		g, ok := member.(*command.Group)
		if !ok {
			break
		}
		var next string
		next, rest = splitWord(rest)
		child := g.Lookup(next)
		if child == nil {
			return nil, path + " " + next
		}
		member = child
		path += " " + headOf(member).Name
	}
	return member, path
}

func (b *Bot) helpOverview(prefix string) string {
	var sb strings.Builder
	sb.WriteString("Commands:")
	for _, m := range b.registry.All() {
		head := headOf(m)
		if head.Hidden {
			continue
		}
		sb.WriteString("\n  " + prefix + head.Name)
		if head.Description != "" {
			sb.WriteString(" - " + head.Description)
		}
		if g, ok := m.(*command.Group); ok {
			for _, sub := range g.Subcommands() {
				sh := headOf(sub)
				if sh.Hidden {
					continue
				}
				sb.WriteString("\n    " + head.Name + " " + sh.Name)
				if sh.Description != "" {
					sb.WriteString(" - " + sh.Description)
				}
			}
		}
	}
	sb.WriteString("\n\nType " + prefix + "help <command> for details.")
	return sb.String()
}

func helpEntry(m command.Member, prefix, path string) string {
	head := headOf(m)
	var sb strings.Builder
	sb.WriteString(prefix + path)
	if usage := usageOf(head); usage != "" {
		sb.WriteString(" " + usage)
	}
	if head.Description != "" {
		sb.WriteString("\n" + head.Description)
	}
	if len(head.Aliases) > 0 {
		sb.WriteString("\nAliases: " + strings.Join(head.Aliases, ", "))
	}
	if g, ok := m.(*command.Group); ok {
		subs := g.Subcommands()
		if len(subs) > 0 {
			sb.WriteString("\nSubcommands:")
			for _, sub := range subs {
				sh := headOf(sub)
				if sh.Hidden {
					continue
				}
				sb.WriteString("\n  " + sh.Name)
				if sh.Description != "" {
					sb.WriteString(" - " + sh.Description)
				}
			}
		}
	}
	return sb.String()
}

// usageOf renders the parameter signature: <required> [optional]. An
// explicit Usage string wins.
func usageOf(c *command.Command) string {
	if c.Usage != "" {
		return c.Usage
	}
	parts := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		if p.Required {
			parts = append(parts, "<"+p.Name+">")
		} else {
			parts = append(parts, "["+p.Name+"]")
		}
	}
	return strings.Join(parts, " ")
}

// headOf returns the command head of a registry member.
func headOf(m command.Member) *command.Command {
	switch v := m.(type) {
	case *command.Command:
		return v
	case *command.Group:
		return &v.Command
	}
	return nil
}
