package serve

import (
	"os"
	"time"

	"github.com/andrebq/reviewbox/auth"
	authapi "github.com/andrebq/reviewbox/auth/api"
	"github.com/andrebq/reviewbox/internal/app"
	"github.com/andrebq/reviewbox/internal/cmdflags"
	"github.com/andrebq/reviewbox/internal/httpserver"
	"github.com/andrebq/reviewbox/internal/logutil"
	"github.com/andrebq/reviewbox/review"
	"github.com/andrebq/reviewbox/store"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:3000"
	var dbFile string
	var secretEnvVar string
	var tokenTTL time.Duration
	var issuer string
	var exposeHash bool
	var protectList bool
	ratingTTL := review.DefaultRatingTTL
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the http api for accounts and reviews",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind the http api",
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			cmdflags.Database(&dbFile),
			cmdflags.SecretEnvVar(&secretEnvVar),
			cmdflags.TokenTTL(&tokenTTL),
			cmdflags.Issuer(&issuer),
			&cli.BoolFlag{
				Name:        "expose-password-hash",
				Usage:       "Include the stored password hash when returning users",
				Destination: &exposeHash,
			},
			&cli.BoolFlag{
				Name:        "protect-user-list",
				Usage:       "Require a valid access token to list users",
				Destination: &protectList,
			},
			&cli.DurationFlag{
				Name:        "rating-cache-ttl",
				Usage:       "How long a computed product rating is kept in memory",
				Value:       ratingTTL,
				Destination: &ratingTTL,
			},
		},
		Action: func(ctx *cli.Context) error {
			secret, err := auth.SecretFromEnv(secretEnvVar, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			defer secret.Zero()

			db, err := store.Open(ctx.Context, dbFile)
			if err != nil {
				return err
			}
			defer db.Close()

			a, err := app.New(ctx.Context, db, app.Config{
				Secret:         secret,
				TokenTTL:       tokenTTL,
				Issuer:         issuer,
				Hasher:         auth.DefaultHasherParams(),
				RatingCacheTTL: ratingTTL,
				Auth: authapi.Options{
					ExposePasswordHash: exposeHash,
					ProtectUserList:    protectList,
				},
			})
			if err != nil {
				return err
			}
			defer a.Close()

			log := logutil.GetOrDefault(ctx.Context)
			log.Info().
				Str("bind", bindAddr).
				Str("db", dbFile).
				Dur("tokenTTL", tokenTTL).
				Msg("Starting reviewbox")
			return httpserver.Serve(ctx.Context, bindAddr, a.Handler())
		},
	}
}
