package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/andrebq/reviewbox/auth"
	"github.com/andrebq/reviewbox/internal/metrics"
	"github.com/andrebq/reviewbox/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func testHandler(ctx context.Context, t *testing.T, opts Options) (http.Handler, *auth.Service, func()) {
	db, cleanup := testutil.AcquireStore(ctx, t, "auth-api")
	hasher := auth.NewHasher(auth.HasherParams{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}, nil)
	tokens := auth.NewTokens(auth.Secret("a-very-long-test-secret"), time.Minute)
	svc := auth.NewService(db.Users(), hasher, tokens)
	m := metrics.New(prometheus.NewRegistry())
	return AsHandler(svc, NewRealm(svc, m), m, opts), svc, cleanup
}

func TestAuthApi(t *testing.T) {
	ctx := context.Background()
	handler, _, cleanup := testHandler(ctx, t, Options{})
	defer cleanup()

	apitest.New().
		Handler(handler).
		Post("/auth/register").
		JSON(`{"login":"TEST-EMAIL@gmail.com","password":"TEST-EMAIL@gmail.com"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal(`$.email`, "TEST-EMAIL@gmail.com")).
		Assert(jsonpath.NotPresent(`$.passwordHash`)).
		End()

	apitest.New().
		Handler(handler).
		Post("/auth/register").
		JSON(`{"login":"TEST-EMAIL@gmail.com","password":"other"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	var tv tokenView
	apitest.New().
		Handler(handler).
		Post("/auth/login").
		JSON(`{"login":"TEST-EMAIL@gmail.com","password":"TEST-EMAIL@gmail.com"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Present(`$.access_token`)).
		End().
		JSON(&tv)
	token := tv.AccessToken
	if token == "" {
		t.Fatal("login should return a token")
	}

	for name, body := range map[string]string{
		"wrong password": `{"login":"TEST-EMAIL@gmail.com","password":"wrong_password"}`,
		"unknown user":   `{"login":"THIS_USER_DOES_NOT_EXIST@gmail.com","password":"TEST-EMAIL@gmail.com"}`,
	} {
		t.Run(name, func(t *testing.T) {
			apitest.New().
				Handler(handler).
				Post("/auth/login").
				JSON(body).
				Expect(t).
				Status(http.StatusUnauthorized).
				Body(`{"statusCode":401,"message":"Unauthorized"}`).
				End()
		})
	}

	for name, body := range map[string]string{
		"password isn't string": `{"login":"TEST-EMAIL@gmail.com","password":2123456}`,
		"login isn't string":    `{"login":2123456,"password":"TEST-EMAIL@gmail.com"}`,
		"missing password":      `{"login":"TEST-EMAIL@gmail.com"}`,
		"not json":              `login=abc`,
	} {
		t.Run(name, func(t *testing.T) {
			apitest.New().
				Handler(handler).
				Post("/auth/login").
				Body(body).
				Expect(t).
				Status(http.StatusBadRequest).
				End()
		})
	}

	apitest.New().
		Handler(handler).
		Get("/auth").
		Expect(t).
		Status(http.StatusOK).
		Body(`[{"email":"TEST-EMAIL@gmail.com"}]`).
		End()

	apitest.New().
		Handler(handler).
		Delete("/auth").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().
		Handler(handler).
		Delete("/auth").
		Header("Authorization", fmt.Sprintf("Bearer %v", token)).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	apitest.New().
		Handler(handler).
		Delete("/auth").
		Header("Authorization", fmt.Sprintf("Bearer %v", token)).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal(`$.message`, "user to delete does not exist")).
		End()

	apitest.New().
		Handler(handler).
		Get("/auth").
		Expect(t).
		Status(http.StatusOK).
		Body(`[]`).
		End()
}

func TestAuthApiOptions(t *testing.T) {
	ctx := context.Background()
	handler, svc, cleanup := testHandler(ctx, t, Options{ExposePasswordHash: true, ProtectUserList: true})
	defer cleanup()

	apitest.New().
		Handler(handler).
		Post("/auth/register").
		JSON(`{"login":"a@x.com","password":"p1"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Present(`$.passwordHash`)).
		End()

	apitest.New().
		Handler(handler).
		Get("/auth").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	token, err := svc.Login(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatal(err)
	}
	apitest.New().
		Handler(handler).
		Get("/auth").
		Header("Authorization", fmt.Sprintf("Bearer %v", token)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$`, 1)).
		Assert(jsonpath.Present(`$[0].passwordHash`)).
		End()
}
