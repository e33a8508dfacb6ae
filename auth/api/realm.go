package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/andrebq/reviewbox/auth"
	"github.com/andrebq/reviewbox/internal/logutil"
	"github.com/andrebq/reviewbox/internal/metrics"
	"github.com/andrebq/reviewbox/internal/respond"
)

type (
	// Realm is the access gate placed in front of protected handlers.
	Realm struct {
		verifier auth.TokenVerifier
		metrics  *metrics.Metrics
	}

	key byte
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)

	callerKey = key(1)
)

func NewRealm(verifier auth.TokenVerifier, m *metrics.Metrics) *Realm {
	return &Realm{
		verifier: verifier,
		metrics:  m,
	}
}

// Protect runs sensitive only for requests carrying a valid bearer token,
// everything else gets a 401 and never reaches it.
func (s *Realm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := s.checkToken(r)
		if err != nil {
			var unauth auth.Unauthenticated
			reason := "invalid token"
			if errors.As(err, &unauth) && unauth.Reason != "" {
				reason = unauth.Reason
			}
			s.metrics.GateRejected(reason)
			log := logutil.GetOrDefault(r.Context())
			log.Debug().Str("reason", reason).Msg("Request rejected by access gate")
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		sensitive.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), email)))
	})
}

// ProtectIf applies Protect only when enabled is true.
func (s *Realm) ProtectIf(enabled bool, h http.Handler) http.Handler {
	if !enabled {
		return h
	}
	return s.Protect(h)
}

func (s *Realm) checkToken(r *http.Request) (string, error) {
	tk, found := BearerToken(r)
	if !found {
		return "", auth.Unauthenticated{Reason: "missing token"}
	}
	return s.verifier.Verify(tk)
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	groups := bearerTokenRE.FindStringSubmatch(r.Header.Get("Authorization"))
	if len(groups) == 0 {
		return "", false
	}
	return groups[1], true
}

func WithCaller(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, callerKey, email)
}

// CallerEmail returns the identity the gate extracted from the token.
func CallerEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(callerKey).(string)
	return email, ok && email != ""
}
