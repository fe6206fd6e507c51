package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/1cu/kleinanzeigen-bot/internal/bot"
	"github.com/1cu/kleinanzeigen-bot/internal/cli"
	"github.com/1cu/kleinanzeigen-bot/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

// run exists so that deferred cleanup, in particular closing the log file
// handle, happens before the process exits.
func run() int {
	logging.Bootstrap()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bot.New(bot.WithVersion(version))
	defer b.Close()

	err := cli.Execute(ctx, b, os.Args[1:])
	if err != nil && cli.ExitCode(err) != 2 {
		log.Error().Err(err).Msg("Command failed")
	}
	return cli.ExitCode(err)
}
