// Package main is the entry point for the pokerctl client.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"poker-bankroll/internal/cli"
	"poker-bankroll/internal/config"
	"poker-bankroll/internal/identity"
	"poker-bankroll/internal/localstore"
	"poker-bankroll/internal/storage"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kv, err := localstore.Open(cfg.LocalDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := &cli.App{
		Config:   cfg,
		Identity: identity.NewStore(kv),
		Guest:    storage.NewGuest(kv),
		NewRemote: func(token string) *storage.Remote {
			return storage.NewRemote(cfg.APIBase, token, cfg.Timeout)
		},
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
		},
	}

	code := cli.Execute(app)
	if err := kv.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close local store")
	}
	os.Exit(code)
}
