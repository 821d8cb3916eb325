package bot

import (
	"github.com/rs/zerolog"

	"github.com/keshon/hybridkit/pkg/command"
)

// Option configures a Bot at construction time.
type Option func(*Bot)

// WithPrefix sets the default text-command prefix. Guild overrides from
// WithSettings take precedence.
func WithPrefix(prefix string) Option {
	return func(b *Bot) { b.prefix = prefix }
}

// WithPrefixResolver replaces prefix resolution entirely, including the
// built-in mention prefixes.
func WithPrefixResolver(r PrefixResolver) Option {
	return func(b *Bot) { b.resolver = r }
}

// WithSettings wires per-guild prefix overrides and the disabled-command
// gate.
func WithSettings(s Settings) Option {
	return func(b *Bot) { b.settings = s }
}

// WithLogger sets the bot's logger; it is also handed to the tree and the
// sync machinery.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bot) { b.log = log }
}

// WithChecks adds global checks evaluated for every invocation on either
// surface.
func WithChecks(checks ...command.Check) Option {
	return func(b *Bot) { b.checks = append(b.checks, checks...) }
}

// WithOnceChecks adds global checks evaluated once per dispatch, before the
// regular global checks.
func WithOnceChecks(checks ...command.Check) Option {
	return func(b *Bot) { b.onceChecks = append(b.onceChecks, checks...) }
}

// WithErrorHandler replaces the default bot-level error sink.
func WithErrorHandler(h func(*command.Context, error)) Option {
	return func(b *Bot) { b.onError = h }
}

// WithSyncOnReady syncs the application-command tree with Discord once,
// after the first Ready event.
func WithSyncOnReady() Option {
	return func(b *Bot) { b.syncOnReady = true }
}

// WithCommandCache persists registered-definition hashes at path so
// unchanged commands are not re-sent on the next sync.
func WithCommandCache(path string) Option {
	return func(b *Bot) { b.cachePath = path }
}

// WithoutHelp skips installing the built-in help command.
func WithoutHelp() Option {
	return func(b *Bot) { b.noHelp = true }
}
