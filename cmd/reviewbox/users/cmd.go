package users

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andrebq/reviewbox/auth"
	"github.com/andrebq/reviewbox/internal/cmdflags"
	"github.com/andrebq/reviewbox/store"
	"github.com/urfave/cli/v2"
)

type env struct {
	db  *store.DB
	svc *auth.Service
}

func Cmd() *cli.Command {
	var e env
	var dbFile string
	return &cli.Command{
		Name:  "users",
		Usage: "Manage accounts directly on the database",
		Flags: []cli.Flag{
			cmdflags.Database(&dbFile),
		},
		Before: func(ctx *cli.Context) error {
			var err error
			e.db, err = store.Open(ctx.Context, dbFile)
			if err != nil {
				return err
			}
			e.svc = auth.NewService(e.db.Users(), auth.NewHasher(auth.DefaultHasherParams(), nil), nil)
			return nil
		},
		After: func(ctx *cli.Context) error {
			if e.db == nil {
				return nil
			}
			return e.db.Close()
		},
		Subcommands: []*cli.Command{
			registerCmd(&e),
			loginCmd(&e),
			listCmd(&e),
			deleteCmd(&e),
		},
	}
}

func emailFlag(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "email",
		Aliases:     []string{"e", "login"},
		Usage:       "Email that identifies the account",
		Destination: out,
		Required:    true,
	}
}

func registerCmd(e *env) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user (password is read from stdin)",
		Flags: []cli.Flag{
			emailFlag(&email),
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			usr, err := e.svc.Register(ctx.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "%v registered\n", usr.Email)
			return nil
		},
	}
}

func loginCmd(e *env) *cli.Command {
	var email string
	var secretEnvVar string
	var tokenTTL time.Duration
	var issuer string
	return &cli.Command{
		Name:  "login",
		Usage: "Check the password of an user (read from stdin) and print an access token",
		Flags: []cli.Flag{
			emailFlag(&email),
			cmdflags.SecretEnvVar(&secretEnvVar),
			cmdflags.TokenTTL(&tokenTTL),
			cmdflags.Issuer(&issuer),
		},
		Action: func(ctx *cli.Context) error {
			secret, err := auth.SecretFromEnv(secretEnvVar, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			defer secret.Zero()
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			svc := auth.NewService(e.db.Users(), auth.NewHasher(auth.DefaultHasherParams(), nil),
				auth.NewTokens(secret, tokenTTL, auth.WithIssuer(issuer)))
			token, err := svc.Login(ctx.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, token)
			return nil
		},
	}
}

func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print every registered user as json lines",
		Action: func(ctx *cli.Context) error {
			all, err := e.svc.ListAll(ctx.Context)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(ctx.App.Writer)
			for _, u := range all {
				err = enc.Encode(struct {
					ID        int64     `json:"id"`
					Email     string    `json:"email"`
					CreatedAt time.Time `json:"createdAt"`
				}{u.ID, u.Email, u.CreatedAt})
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func deleteCmd(e *env) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "delete",
		Usage: "Remove an user",
		Flags: []cli.Flag{
			emailFlag(&email),
		},
		Action: func(ctx *cli.Context) error {
			usr, err := e.svc.Delete(ctx.Context, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "%v deleted\n", usr.Email)
			return nil
		},
	}
}

func readPassword(in io.Reader) (string, error) {
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if sc.Err() != nil {
			return "", sc.Err()
		}
		return "", errors.New("missing password from stdin")
	}
	password := sc.Text()
	if len(password) == 0 {
		return "", errors.New("missing password from stdin")
	}
	return password, nil
}
