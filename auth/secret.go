package auth

import (
	"errors"
	"fmt"
	"os"
)

const (
	SecretEnvVar = "REVIEWBOX_JWT_SECRET"

	minSecretLen = 16
)

type (
	// Secret signs and verifies every token issued by this process.
	Secret []byte
)

// SecretFromEnv reads the signing secret from varname and clears the
// variable so child processes never see it.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) (Secret, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	if err := setfn(varname, ""); err != nil {
		return nil, fmt.Errorf("auth: unable to clear %v, cause %w", varname, err)
	}
	if len(val) == 0 {
		return nil, fmt.Errorf("auth: missing signing secret, set %v", varname)
	} else if len(val) < minSecretLen {
		return nil, fmt.Errorf("auth: signing secret too short got %v expecting at least %v bytes", len(val), minSecretLen)
	}
	return Secret(val), nil
}

func (s Secret) Zero() {
	for i := range s {
		s[i] = 0
	}
}

var errEmptySecret = errors.New("auth: cannot sign tokens with an empty secret")
