package main

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/hybridkit/internal/storage"
	"github.com/keshon/hybridkit/pkg/bot"
	"github.com/keshon/hybridkit/pkg/command"
	"github.com/keshon/hybridkit/pkg/hybrid"
)

const embedColor = 0xb01e66

var started = time.Now()

// moderation gates destructive commands behind the Manage Messages
// permission and logs their failures.
type moderation struct {
	log zerolog.Logger
}

func (moderation) BindingName() string { return "moderation" }

func (moderation) BindingCheck(ctx *command.Context) (bool, error) {
	perms, err := ctx.Session.UserChannelPermissions(ctx.Author().ID, ctx.ChannelID())
	if err != nil {
		return false, fmt.Errorf("resolve permissions: %w", err)
	}
	return perms&discordgo.PermissionManageMessages != 0, nil
}

func (m moderation) BindingError(ctx *command.Context, err error) {
	m.log.Warn().Err(err).Str("command", ctx.InvokedWith).Msg("moderation command error")
}

func registerCommands(b *bot.Bot, store *storage.Store, log zerolog.Logger, devGuildID string) error {
	// Scoping everything to a dev guild makes structured commands appear
	// instantly instead of after the global propagation delay.
	var guilds []string
	if devGuildID != "" {
		guilds = []string{devGuildID}
	}

	ping := hybrid.New(&command.Command{
		Name:        "ping",
		Description: "Round-trip latency check",
		GuildIDs:    guilds,
		Run:         runPing,
	})
	if err := b.AddCommand(ping); err != nil {
		return err
	}

	roll := hybrid.New(&command.Command{
		Name:        "roll",
		Aliases:     []string{"dice"},
		Description: "Roll dice like `2d6+3`",
		GuildIDs:    guilds,
		Params: []*command.Param{
			{Name: "formula", Description: "Dice formula, e.g. 2d6+3", Default: "1d6", Rest: true},
		},
		Run: runRoll,
	})
	if err := b.AddCommand(roll); err != nil {
		return err
	}

	avatar := hybrid.New(&command.Command{
		Name:        "avatar",
		Description: "Show a member's avatar",
		GuildIDs:    guilds,
		Params: []*command.Param{
			{Name: "user", Description: "Whose avatar to show, defaults to you", Converter: command.UserConverter{}},
		},
		Run: runAvatar,
	})
	if err := b.AddCommand(avatar); err != nil {
		return err
	}

	purge := hybrid.New(&command.Command{
		Name:        "purge",
		Description: "Bulk-delete recent messages in this channel",
		GuildIDs:    guilds,
		Params: []*command.Param{
			{Name: "count", Description: "How many messages to delete (2-100)", Required: true, Converter: command.IntConverter{}},
		},
		Run: runPurge,
	}, hybrid.WithDefaultMemberPermissions(discordgo.PermissionManageMessages))
	purge.Bind(moderation{log: log})
	if err := b.AddCommand(purge); err != nil {
		return err
	}

	settings := hybrid.NewGroup(&command.Group{Command: command.Command{
		Name:        "settings",
		Description: "Per-guild bot configuration",
		GuildIDs:    guilds,
		Run:         runSettingsShow(store),
	}},
		hybrid.WithFallback("show"),
		hybrid.WithDefaultMemberPermissions(discordgo.PermissionManageGuild),
	)
	if _, err := settings.SubCommand(&command.Command{
		Name:        "prefix",
		Description: "Override the text command prefix, omit the value to reset",
		Params: []*command.Param{
			{Name: "value", Description: "New prefix"},
		},
		Run: runSettingsPrefix(store),
	}); err != nil {
		return err
	}
	toggles, err := settings.SubGroup(&command.Group{Command: command.Command{
		Name:        "commands",
		Description: "Switch commands on or off in this guild",
	}})
	if err != nil {
		return err
	}
	if _, err := toggles.SubCommand(&command.Command{
		Name:        "disable",
		Description: "Disable a command in this guild",
		Params: []*command.Param{
			{Name: "command", Description: "Command to disable", Required: true},
		},
		Run: runCommandToggle(b, store, true),
	}); err != nil {
		return err
	}
	if _, err := toggles.SubCommand(&command.Command{
		Name:        "enable",
		Description: "Re-enable a disabled command",
		Params: []*command.Param{
			{Name: "command", Description: "Command to enable", Required: true},
		},
		Run: runCommandToggle(b, store, false),
	}); err != nil {
		return err
	}
	if err := b.AddGroup(settings); err != nil {
		return err
	}

	// Text-only: uptime has no structured counterpart.
	return b.AddTextCommand(&command.Command{
		Name:        "uptime",
		Description: "How long the bot has been running",
		Run:         runUptime,
	})
}

func runPing(ctx *command.Context) error {
	latency := ctx.Session.HeartbeatLatency().Round(time.Millisecond)
	return ctx.Reply(fmt.Sprintf("Pong! Gateway latency is %s.", latency))
}

func runUptime(ctx *command.Context) error {
	return ctx.Reply(fmt.Sprintf("Up for %s.", time.Since(started).Round(time.Second)))
}

func runAvatar(ctx *command.Context) error {
	user := ctx.User("user")
	if user == nil {
		user = ctx.Author()
	}
	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's avatar", user.Username),
		Image: &discordgo.MessageEmbedImage{URL: user.AvatarURL("512")},
		Color: embedColor,
	})
}

func runPurge(ctx *command.Context) error {
	count := ctx.Int("count")
	if count < 2 || count > 100 {
		return &command.BadArgumentError{Param: "count", Value: fmt.Sprint(count), Message: "count must be between 2 and 100"}
	}

	msgs, err := ctx.Session.ChannelMessages(ctx.ChannelID(), int(count), "", "", "")
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	if err := ctx.Session.ChannelMessagesBulkDelete(ctx.ChannelID(), ids); err != nil {
		return fmt.Errorf("bulk delete: %w", err)
	}
	return ctx.ReplyEphemeral(fmt.Sprintf("Deleted %d messages.", len(ids)))
}

func runSettingsShow(store *storage.Store) command.HandlerFunc {
	return func(ctx *command.Context) error {
		prefix, err := store.GuildPrefix(ctx.GuildID())
		if err != nil {
			return err
		}
		prefixLine := "default"
		if prefix != "" {
			prefixLine = fmt.Sprintf("`%s`", prefix)
		}

		disabled, err := store.DisabledCommands(ctx.GuildID())
		if err != nil {
			return err
		}
		disabledLine := "none"
		if len(disabled) > 0 {
			disabledLine = "`" + strings.Join(disabled, "`, `") + "`"
		}

		return ctx.ReplyEmbed(&discordgo.MessageEmbed{
			Title: "Server settings",
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Prefix override", Value: prefixLine, Inline: true},
				{Name: "Disabled commands", Value: disabledLine, Inline: true},
			},
			Color: embedColor,
		})
	}
}

func runSettingsPrefix(store *storage.Store) command.HandlerFunc {
	return func(ctx *command.Context) error {
		value := ctx.String("value")
		if err := store.SetGuildPrefix(ctx.GuildID(), value); err != nil {
			return err
		}
		if value == "" {
			return ctx.Reply("Prefix override cleared.")
		}
		return ctx.Reply(fmt.Sprintf("Prefix set to `%s`.", value))
	}
}

func runCommandToggle(b *bot.Bot, store *storage.Store, disable bool) command.HandlerFunc {
	return func(ctx *command.Context) error {
		name := ctx.String("command")
		member := b.Lookup(name)
		if member == nil {
			return &command.BadArgumentError{Param: "command", Value: name, Message: "no such command"}
		}

		// Aliases resolve to the primary name; the disabled gate checks
		// primaries only.
		switch m := member.(type) {
		case *command.Command:
			name = m.Name
		case *command.Group:
			name = m.Name
		}
		if name == "help" || name == "settings" {
			return &command.BadArgumentError{Param: "command", Value: name, Message: "that command cannot be disabled"}
		}

		if err := store.SetCommandDisabled(ctx.GuildID(), name, disable); err != nil {
			return err
		}
		if disable {
			return ctx.Reply(fmt.Sprintf("Command `%s` disabled in this guild.", name))
		}
		return ctx.Reply(fmt.Sprintf("Command `%s` enabled again.", name))
	}
}

var (
	diceTokenRe = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+-])`)
	diceTermRe  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
)

// evalDice evaluates a formula of dice and constant terms joined by + and -.
func evalDice(formula string) (int, string, error) {
	tokens := diceTokenRe.FindAllString(formula, -1)
	if len(tokens) == 0 || strings.Join(tokens, "") != formula {
		return 0, "", fmt.Errorf("can't parse %q, try something like 2d6+3", formula)
	}

	total := 0
	op := "+"
	var details []string
	for _, token := range tokens {
		if token == "+" || token == "-" {
			op = token
			continue
		}

		val, desc, err := evalDiceTerm(token)
		if err != nil {
			return 0, "", err
		}
		if len(details) > 0 {
			details = append(details, fmt.Sprintf(" %s ", op))
		}
		details = append(details, desc)

		if op == "-" {
			total -= val
		} else {
			total += val
		}
	}
	if len(details) == 0 {
		return 0, "", fmt.Errorf("can't parse %q, try something like 2d6+3", formula)
	}
	return total, strings.Join(details, ""), nil
}

func evalDiceTerm(token string) (int, string, error) {
	matches := diceTermRe.FindStringSubmatch(token)
	if matches == nil {
		num, err := strconv.Atoi(token)
		if err != nil {
			return 0, "", fmt.Errorf("%q is not a number or dice", token)
		}
		return num, fmt.Sprintf("`%d`", num), nil
	}

	count := 1
	if matches[1] != "" {
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, "", fmt.Errorf("invalid dice count in %q", token)
		}
		count = n
	}
	sides, err := strconv.Atoi(matches[2])
	if err != nil || sides < 2 {
		return 0, "", fmt.Errorf("invalid dice sides in %q", token)
	}
	if count < 1 || count > 100 || sides > 1000 {
		return 0, "", fmt.Errorf("too big, max 100 dice with 1000 sides")
	}

	sum := 0
	rolls := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := rand.Intn(sides) + 1
		sum += r
		rolls = append(rolls, strconv.Itoa(r))
	}
	return sum, fmt.Sprintf("`%s` [%s]", token, strings.Join(rolls, ", ")), nil
}

func runRoll(ctx *command.Context) error {
	formula := strings.ReplaceAll(ctx.String("formula"), " ", "")
	total, detail, err := evalDice(formula)
	if err != nil {
		return &command.BadArgumentError{Param: "formula", Value: formula, Message: err.Error()}
	}
	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "🎲 Dice Roll",
		Description: fmt.Sprintf("**Formula**: `%s`\n**Rolls**: %s\n**Total**: **%d**", formula, detail, total),
		Color:       embedColor,
	})
}
