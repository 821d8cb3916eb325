package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/hybridkit/internal/config"
	"github.com/keshon/hybridkit/internal/logx"
	"github.com/keshon/hybridkit/internal/sentryx"
	"github.com/keshon/hybridkit/internal/storage"
	"github.com/keshon/hybridkit/internal/version"
	"github.com/keshon/hybridkit/pkg/bot"
	"github.com/keshon/hybridkit/pkg/command"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logx.New(cfg.LogLevel, cfg.Environment)
	log.Info().Str("version", version.Info()).Msg("starting hybridkit bot")

	if err := sentryx.Init(cfg.SentryDSN, cfg.Environment, version.Info()); err != nil {
		log.Warn().Err(err).Msg("sentry init failed, continuing without it")
	}
	defer sentryx.Flush(2 * time.Second)
	defer sentryx.Recover()

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer store.Close()

	b, err := bot.New(cfg.DiscordToken,
		bot.WithPrefix(cfg.Prefix),
		bot.WithLogger(log),
		bot.WithSettings(store),
		bot.WithSyncOnReady(),
		bot.WithCommandCache(cfg.CommandCachePath),
		bot.WithOnceChecks(guildOnly),
		bot.WithErrorHandler(errorReporter(log)),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("create bot")
	}

	if err := registerCommands(b, store, log, cfg.DevGuildID); err != nil {
		log.Fatal().Err(err).Msg("register commands")
	}

	if err := b.Open(); err != nil {
		log.Fatal().Err(err).Msg("open gateway")
	}
	defer b.Close()

	log.Info().Msg("bot is up, press Ctrl+C to exit")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info().Str("signal", s.String()).Msg("shutting down")
}

// guildOnly blocks direct messages; every command here is guild-scoped.
func guildOnly(ctx *command.Context) (bool, error) {
	return ctx.GuildID() != "", nil
}

// errorReporter routes dispatched command errors: refusals go back to the
// user, callback failures go to the log and Sentry.
func errorReporter(log zerolog.Logger) func(*command.Context, error) {
	return func(ctx *command.Context, err error) {
		var notFound *command.NotFoundError
		if errors.As(err, &notFound) {
			log.Debug().Str("name", notFound.Name).Msg("unknown command")
			return
		}

		name := "?"
		if ctx.Command != nil {
			name = ctx.Command.QualifiedName()
		}

		var invokeErr *command.InvokeError
		if errors.As(err, &invokeErr) || !command.IsError(err) {
			sentryx.CaptureException(err, map[string]any{
				"command": name,
				"guild":   ctx.GuildID(),
			})
			log.Error().Err(err).Str("command", name).Msg("command failed")
			if replyErr := ctx.ReplyEphemeral("Something went wrong running that command."); replyErr != nil {
				log.Warn().Err(replyErr).Msg("error reply failed")
			}
			return
		}

		log.Debug().Err(err).Str("command", name).Msg("command refused")
		if replyErr := ctx.ReplyEphemeral(err.Error()); replyErr != nil {
			log.Warn().Err(replyErr).Msg("error reply failed")
		}
	}
}
