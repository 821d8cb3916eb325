// Package bot owns the discordgo session and routes gateway events into the
// two command systems: message events through the prefix registry, command
// interactions through the application-command tree. It supplies the
// dispatcher-side collaborators both systems expect: global checks, unified
// context construction, and the bot-level error sink.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/hybridkit/pkg/appcmd"
	"github.com/keshon/hybridkit/pkg/command"
	"github.com/keshon/hybridkit/pkg/hybrid"
)

// Settings supplies per-guild dispatch configuration. Implementations are
// expected to be cheap; both lookups run on the event path.
type Settings interface {
	// GuildPrefix returns the guild's prefix override, or "" for none.
	GuildPrefix(guildID string) (string, error)
	// CommandDisabled reports whether the named top-level command is
	// switched off in the guild.
	CommandDisabled(guildID, name string) (bool, error)
}

// PrefixResolver returns every prefix that may start a command in the given
// message, checked in order.
type PrefixResolver func(s *discordgo.Session, m *discordgo.MessageCreate) []string

// Bot is the dispatcher. Register commands before Open; registration after
// the session is open is tolerated but won't be synced until the next Sync
// call.
type Bot struct {
	session  *discordgo.Session
	registry *command.Registry
	tree     *appcmd.Tree
	log      zerolog.Logger

	prefix   string
	resolver PrefixResolver
	settings Settings

	checks     []command.Check
	onceChecks []command.Check
	onError    func(*command.Context, error)

	syncOnReady bool
	cachePath   string
	syncOnce    sync.Once
	noHelp      bool

	removeHandlers []func()
}

// New creates a bot with its own gateway session. The token is used as-is
// for the "Bot" authorization scheme.
func New(token string, opts ...Option) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		session:  session,
		registry: command.NewRegistry(),
		prefix:   "!",
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.tree = appcmd.NewTree(b.log)
	b.tree.BindClient(b)
	b.tree.OnError = b.onTreeError
	b.tree.Fallback = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.log.Warn().Str("command", i.ApplicationCommandData().Name).Msg("unknown application command")
	}

	if err := b.installHelp(); err != nil {
		return nil, err
	}
	return b, nil
}

// Session exposes the underlying gateway session.
func (b *Bot) Session() *discordgo.Session { return b.session }

// Tree exposes the application-command tree.
func (b *Bot) Tree() *appcmd.Tree { return b.tree }

// Open connects to the gateway and wires the event handlers.
func (b *Bot) Open() error {
	b.session.Identify.Intents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers

	b.removeHandlers = append(b.removeHandlers,
		b.session.AddHandler(b.onReady),
		b.session.AddHandler(b.onMessageCreate),
		b.session.AddHandler(b.onInteractionCreate),
	)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	return nil
}

// Close detaches the handlers and closes the gateway session.
func (b *Bot) Close() error {
	for _, remove := range b.removeHandlers {
		remove()
	}
	b.removeHandlers = nil
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("gateway ready")
	if !b.syncOnReady {
		return
	}
	// the application ID is only reliable after Ready
	b.syncOnce.Do(func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := b.Sync(ctx); err != nil {
				b.log.Error().Err(err).Msg("application command sync failed")
			}
		}()
	})
}

// Sync pushes the tree's command definitions to Discord, creating changed
// commands and deleting obsolete ones.
func (b *Bot) Sync(ctx context.Context) error {
	sy, err := appcmd.NewSyncer(b.tree, b.session, b.cachePath, b.log)
	if err != nil {
		return err
	}
	defer sy.Close()
	return sy.Sync(ctx)
}

// AddCommand registers a hybrid command on both surfaces. A prefix-side
// conflict rolls the structured registration back.
func (b *Bot) AddCommand(w *hybrid.Command) error {
	if err := b.tree.Add(w.App); err != nil {
		return err
	}
	if err := b.registry.Add(w.Command); err != nil {
		b.tree.Remove(w.App.Name)
		return err
	}
	return nil
}

// AddGroup registers a hybrid group on both surfaces with the same rollback
// guarantee as AddCommand.
func (b *Bot) AddGroup(g *hybrid.Group) error {
	if err := b.tree.AddGroup(g.App); err != nil {
		return err
	}
	if err := b.registry.Add(g.Group); err != nil {
		b.tree.Remove(g.App.Name)
		return err
	}
	return nil
}

// AddTextCommand registers a prefix-only command.
func (b *Bot) AddTextCommand(c *command.Command) error { return b.registry.Add(c) }

// AddTextGroup registers a prefix-only group.
func (b *Bot) AddTextGroup(g *command.Group) error { return b.registry.Add(g) }

// Lookup resolves a registered prefix command or group by name or alias.
func (b *Bot) Lookup(name string) command.Member { return b.registry.Get(name) }

// Commands lists registered prefix members in registration order.
func (b *Bot) Commands() []command.Member { return b.registry.All() }

// NewContext builds the unified context for a bridged structured
// invocation. Implements hybrid.Host.
func (b *Bot) NewContext(s *discordgo.Session, i *discordgo.InteractionCreate) (*command.Context, error) {
	ctx := command.NewInteractionContext(s, i)
	ctx.Bot = b
	return ctx, nil
}

// CanRun evaluates the bot-level checks: the once-checks when once is set,
// the regular global checks otherwise. Implements command.Bot.
func (b *Bot) CanRun(ctx *command.Context, once bool) (bool, error) {
	checks := b.checks
	if once {
		checks = b.onceChecks
	}
	for _, check := range checks {
		ok, err := check(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// OnCommandError is the bot-level error sink, the last stop of the dispatch
// path. A handler installed with WithErrorHandler replaces the default:
// log, and answer the invoker when the failure is part of the command error
// taxonomy. Unknown-command noise is logged at debug only.
func (b *Bot) OnCommandError(ctx *command.Context, err error) {
	if b.onError != nil {
		b.onError(ctx, err)
		return
	}

	var notFound *command.NotFoundError
	if errors.As(err, &notFound) {
		b.log.Debug().Str("name", notFound.Name).Msg("unknown command")
		return
	}

	evt := b.log.Error().Err(err)
	if ctx != nil && ctx.Command != nil {
		evt = evt.Str("command", ctx.Command.QualifiedName())
	}
	evt.Msg("command failed")

	if ctx != nil && command.IsError(err) {
		if rerr := ctx.ReplyEphemeral(err.Error()); rerr != nil {
			b.log.Warn().Err(rerr).Msg("failed to report command error to the invoker")
		}
	}
}

// onTreeError receives failures the structured dispatcher could not hand to
// a command's own error path: unknown commands without a fallback, pure
// structured commands, and definition drift surfaced by the bridge.
func (b *Bot) onTreeError(inv *appcmd.Invocation, err error) {
	var mismatch *appcmd.SignatureMismatchError
	if errors.As(err, &mismatch) {
		b.log.Error().Err(err).Msg("registered command definition drifted from the local one; re-run Sync")
		return
	}
	name := "unknown"
	if inv.Command != nil {
		name = inv.Command.QualifiedName()
	}
	b.log.Error().Err(err).Str("command", name).Msg("application command failed")
}
