package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andrebq/reviewbox/cmd/reviewbox/serve"
	"github.com/andrebq/reviewbox/cmd/reviewbox/users"
	"github.com/andrebq/reviewbox/internal/logutil"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	logLevel := "info"
	var prettyLog bool
	app := &cli.App{
		Name:  "reviewbox",
		Usage: "Product reviews guarded by email and password accounts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Minimum level of log messages (trace, debug, info, warn, error)",
				Value:       logLevel,
				Destination: &logLevel,
			},
			&cli.BoolFlag{
				Name:        "pretty-log",
				Usage:       "Write human friendly logs to stderr instead of json",
				Destination: &prettyLog,
			},
		},
		Before: func(ctx *cli.Context) error {
			logger, err := logutil.New(os.Stderr, logLevel, prettyLog)
			if err != nil {
				return err
			}
			log.Logger = logger
			ctx.Context = logutil.WithLogger(ctx.Context, logger)
			return nil
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			users.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
