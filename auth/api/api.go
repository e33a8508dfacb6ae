package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrebq/reviewbox/auth"
	"github.com/andrebq/reviewbox/internal/logutil"
	"github.com/andrebq/reviewbox/internal/metrics"
	"github.com/andrebq/reviewbox/internal/respond"
	"github.com/julienschmidt/httprouter"
)

type (
	Options struct {
		// ExposePasswordHash includes the stored hash in register and list
		// responses. Off unless an operator asks for it.
		ExposePasswordHash bool
		// ProtectUserList puts the user list behind the access gate.
		ProtectUserList bool
	}

	credentials struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}

	userView struct {
		Email        string `json:"email"`
		PasswordHash string `json:"passwordHash,omitempty"`
	}

	tokenView struct {
		AccessToken string `json:"access_token"`
	}
)

// AsHandler exposes svc under /auth, protected routes go through realm.
func AsHandler(svc *auth.Service, realm *Realm, m *metrics.Metrics, opts Options) http.Handler {
	router := httprouter.New()
	router.Handler("POST", "/auth/register", register(svc, m, opts))
	router.Handler("POST", "/auth/login", login(svc, m))
	router.Handler("DELETE", "/auth", realm.Protect(deleteCaller(svc, m)))
	router.Handler("GET", "/auth", realm.ProtectIf(opts.ProtectUserList, listUsers(svc, opts)))
	return router
}

func register(svc *auth.Service, m *metrics.Metrics, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := readCredentials(w, r)
		if !ok {
			m.AuthOp("register", "bad_request")
			return
		}
		usr, err := svc.Register(r.Context(), in.Login, in.Password)
		if err != nil {
			m.AuthOp("register", outcome(err))
			writeError(r.Context(), w, err)
			return
		}
		m.AuthOp("register", "ok")
		respond.JSON(w, http.StatusCreated, toView(usr, opts))
	}
}

func login(svc *auth.Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := readCredentials(w, r)
		if !ok {
			m.AuthOp("login", "bad_request")
			return
		}
		token, err := svc.Login(r.Context(), in.Login, in.Password)
		if err != nil {
			m.AuthOp("login", outcome(err))
			writeError(r.Context(), w, err)
			return
		}
		m.AuthOp("login", "ok")
		respond.JSON(w, http.StatusOK, tokenView{AccessToken: token})
	}
}

func deleteCaller(svc *auth.Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := CallerEmail(r.Context())
		if !ok {
			writeError(r.Context(), w, auth.Unauthenticated{Reason: "missing caller"})
			return
		}
		_, err := svc.Delete(r.Context(), email)
		if err != nil {
			m.AuthOp("delete", outcome(err))
			writeError(r.Context(), w, err)
			return
		}
		m.AuthOp("delete", "ok")
		w.WriteHeader(http.StatusNoContent)
	}
}

func listUsers(svc *auth.Service, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListAll(r.Context())
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		out := make([]userView, 0, len(users))
		for _, u := range users {
			out = append(out, toView(u, opts))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var in credentials
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, http.StatusBadRequest, "login and password must be strings")
		return credentials{}, false
	}
	switch {
	case in.Login == "":
		respond.Error(w, http.StatusBadRequest, "login is required")
		return credentials{}, false
	case in.Password == "":
		respond.Error(w, http.StatusBadRequest, "password is required")
		return credentials{}, false
	}
	return in, true
}

func toView(u auth.User, opts Options) userView {
	v := userView{Email: u.Email}
	if opts.ExposePasswordHash {
		v.PasswordHash = u.PasswordHash
	}
	return v
}

func outcome(err error) string {
	switch {
	case errors.Is(err, auth.AlreadyRegistered{}):
		return "already_registered"
	case errors.Is(err, auth.InvalidCredentials{}):
		return "invalid_credentials"
	case errors.Is(err, auth.UserNotFound{}):
		return "user_not_found"
	case errors.Is(err, auth.Unauthenticated{}):
		return "unauthenticated"
	default:
		return "error"
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.AlreadyRegistered{}):
		respond.Error(w, http.StatusBadRequest, "user with this email is already registered")
	case errors.Is(err, auth.InvalidCredentials{}), errors.Is(err, auth.Unauthenticated{}):
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, auth.UserNotFound{}):
		respond.Error(w, http.StatusNotFound, "user to delete does not exist")
	default:
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Msg("Unexpected error while handling auth request")
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
