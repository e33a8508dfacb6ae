package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andrebq/reviewbox/internal/testutil"
	"github.com/andrebq/reviewbox/store"
	"github.com/stretchr/testify/require"
)

func newTestService(ctx context.Context, t *testing.T) (*Service, *store.DB, func()) {
	db, cleanup := testutil.AcquireStore(ctx, t, "auth")
	tokens := NewTokens(Secret("a-very-long-test-secret"), time.Minute)
	return NewService(db.Users(), cheapHasher(), tokens), db, cleanup
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := newTestService(ctx, t)
	defer cleanup()

	usr, err := svc.Register(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", usr.Email)
	require.NotEqual(t, "p1", usr.PasswordHash)

	token, err := svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	email, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", email)

	_, err = svc.Login(ctx, "a@x.com", "p2")
	require.Equal(t, InvalidCredentials{}, err)

	deleted, err := svc.DeleteByToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, usr.Email, deleted.Email)

	_, err = svc.DeleteByToken(ctx, token)
	require.ErrorIs(t, err, UserNotFound{})

	_, err = svc.Login(ctx, "a@x.com", "p1")
	require.Equal(t, InvalidCredentials{}, err)
}

func TestRegisterTwice(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := newTestService(ctx, t)
	defer cleanup()

	_, err := svc.Register(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "a@x.com", "p2")
	require.Equal(t, AlreadyRegistered{Email: "a@x.com"}, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	// the first password still works
	_, err = svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
}

func TestConcurrentRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := newTestService(ctx, t)
	defer cleanup()

	const attempts = 6
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "race@x.com", "p1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, AlreadyRegistered{}) {
			t.Fatalf("race losers should get AlreadyRegistered, got %v", err)
		}
	}
	require.Equal(t, 1, ok)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestLoginDoesNotDiscloseAccounts(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := newTestService(ctx, t)
	defer cleanup()

	_, err := svc.Register(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "a@x.com", "nope")
	_, unknownUser := svc.Login(ctx, "ghost@x.com", "p1")
	require.Equal(t, wrongPassword, unknownUser)
	require.ErrorIs(t, unknownUser, InvalidCredentials{})
}

func TestLoginWithCorruptHash(t *testing.T) {
	ctx := context.Background()
	svc, db, cleanup := newTestService(ctx, t)
	defer cleanup()

	_, err := db.Users().Create(ctx, "a@x.com", "not-a-hash")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "a@x.com", "not-a-hash")
	require.Equal(t, InvalidCredentials{}, err)
}

func TestDeleteMissingUser(t *testing.T) {
	ctx := context.Background()
	svc, _, cleanup := newTestService(ctx, t)
	defer cleanup()

	_, err := svc.Delete(ctx, "ghost@x.com")
	require.Equal(t, UserNotFound{Email: "ghost@x.com"}, err)

	_, err = svc.DeleteByToken(ctx, "garbage")
	require.ErrorIs(t, err, Unauthenticated{})
}

type vanishingStore struct {
	CredentialStore
}

func (vanishingStore) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	return User{Email: email}, true, nil
}

func (vanishingStore) DeleteByEmail(ctx context.Context, email string) (User, bool, error) {
	return User{}, false, nil
}

func TestDeleteRace(t *testing.T) {
	svc := NewService(vanishingStore{}, cheapHasher(), NewTokens(Secret("a-very-long-test-secret"), time.Minute))
	_, err := svc.Delete(context.Background(), "a@x.com")
	require.ErrorIs(t, err, UserNotFound{})
}

type racingStore struct {
	CredentialStore
}

func (racingStore) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	return User{}, false, nil
}

func (racingStore) Create(ctx context.Context, email, hash string) (User, error) {
	return User{}, store.DuplicateKey{Table: "users", Key: email}
}

func TestRegisterRaceLoser(t *testing.T) {
	svc := NewService(racingStore{}, cheapHasher(), NewTokens(Secret("a-very-long-test-secret"), time.Minute))
	_, err := svc.Register(context.Background(), "a@x.com", "p1")
	require.Equal(t, AlreadyRegistered{Email: "a@x.com"}, err)
}
