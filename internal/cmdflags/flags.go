package cmdflags

import (
	"time"

	"github.com/andrebq/reviewbox/auth"
	"github.com/urfave/cli/v2"
)

func Database(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "reviewbox.db"
	}
	return &cli.StringFlag{
		Name:        "db",
		Aliases:     []string{"d"},
		Usage:       "Path to the sqlite database holding users and reviews",
		EnvVars:     []string{"REVIEWBOX_DB"},
		Destination: out,
		Value:       *out,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = auth.SecretEnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the token signing secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}

func TokenTTL(out *time.Duration) cli.Flag {
	if *out == 0 {
		*out = auth.DefaultTokenTTL
	}
	return &cli.DurationFlag{
		Name:        "token-ttl",
		Usage:       "How long an access token remains valid",
		Value:       *out,
		Destination: out,
	}
}

func Issuer(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = auth.DefaultIssuer
	}
	return &cli.StringFlag{
		Name:        "issuer",
		Usage:       "Issuer claim written to (and required from) access tokens",
		Value:       *out,
		Destination: out,
	}
}
