package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrebq/reviewbox/store"
)

type (
	User = store.User

	CredentialStore interface {
		FindByEmail(ctx context.Context, email string) (User, bool, error)
		Create(ctx context.Context, email, passwordHash string) (User, error)
		DeleteByEmail(ctx context.Context, email string) (User, bool, error)
		ListAll(ctx context.Context) ([]User, error)
	}

	PasswordHasher interface {
		Hash(plain string) (string, error)
		Verify(plain, encoded string) (bool, error)
	}

	TokenIssuer interface {
		Issue(email string) (string, error)
	}

	TokenVerifier interface {
		Verify(token string) (string, error)
	}

	TokenAuthority interface {
		TokenIssuer
		TokenVerifier
	}

	// Service orchestrates registration, login and removal of users.
	// Every failure is returned to the caller, nothing is logged here.
	Service struct {
		users  CredentialStore
		hasher PasswordHasher
		tokens TokenAuthority
	}
)

func NewService(users CredentialStore, hasher PasswordHasher, tokens TokenAuthority) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new user identified by login. The lookup is only a fast
// path, the unique index in the store decides who wins a concurrent race.
func (s *Service) Register(ctx context.Context, login, password string) (User, error) {
	_, found, err := s.users.FindByEmail(ctx, login)
	if err != nil {
		return User{}, err
	} else if found {
		return User{}, AlreadyRegistered{Email: login}
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}
	usr, err := s.users.Create(ctx, login, hash)
	if errors.Is(err, store.DuplicateKey{}) {
		return User{}, AlreadyRegistered{Email: login}
	} else if err != nil {
		return User{}, err
	}
	return usr, nil
}

// Login checks the password of login and returns a new access token.
func (s *Service) Login(ctx context.Context, login, password string) (string, error) {
	usr, found, err := s.users.FindByEmail(ctx, login)
	if err != nil {
		return "", err
	} else if !found {
		return "", InvalidCredentials{}
	}
	// a corrupt hash is just another mismatch
	ok, err := s.hasher.Verify(password, usr.PasswordHash)
	if err != nil || !ok {
		return "", InvalidCredentials{}
	}
	token, err := s.tokens.Issue(usr.Email)
	if err != nil {
		return "", fmt.Errorf("unable to issue token for %v, cause %w", usr.Email, err)
	}
	return token, nil
}

// Delete removes the user owning email. Unlike Login, an absent user is
// reported as UserNotFound.
func (s *Service) Delete(ctx context.Context, email string) (User, error) {
	_, found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return User{}, err
	} else if !found {
		return User{}, UserNotFound{Email: email}
	}
	usr, found, err := s.users.DeleteByEmail(ctx, email)
	if err != nil {
		return User{}, err
	} else if !found {
		// removed by someone else between the two calls
		return User{}, UserNotFound{Email: email}
	}
	return usr, nil
}

// DeleteByToken verifies token and removes the user it was issued to.
func (s *Service) DeleteByToken(ctx context.Context, token string) (User, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		return User{}, err
	}
	return s.Delete(ctx, email)
}

// Verify exposes the token verifier so the service can be used as the
// access gate of other resources.
func (s *Service) Verify(token string) (string, error) {
	return s.tokens.Verify(token)
}

func (s *Service) ListAll(ctx context.Context) ([]User, error) {
	return s.users.ListAll(ctx)
}
