package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenTTL = time.Hour
	DefaultIssuer   = "reviewbox"
)

type (
	// Claims are encoded into every access token.
	Claims struct {
		Email string `json:"email"`
		jwt.RegisteredClaims
	}

	// Tokens issues and verifies HS256 access tokens. It holds no state
	// other than the secret, so it is safe for concurrent use.
	Tokens struct {
		secret Secret
		ttl    time.Duration
		issuer string
		now    func() time.Time
	}

	TokenOption func(*Tokens)
)

// WithClock replaces time.Now, used to simulate token expiration.
func WithClock(now func() time.Time) TokenOption {
	return func(t *Tokens) {
		t.now = now
	}
}

func WithIssuer(issuer string) TokenOption {
	return func(t *Tokens) {
		t.issuer = issuer
	}
}

func NewTokens(secret Secret, ttl time.Duration, opts ...TokenOption) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	t := &Tokens{
		secret: secret,
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue returns a signed token for email that expires after the configured TTL.
func (t *Tokens) Issue(email string) (string, error) {
	if len(t.secret) == 0 {
		return "", errEmptySecret
	}
	now := t.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	str, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.secret))
	if err != nil {
		return "", fmt.Errorf("auth: unable to sign token, cause %w", err)
	}
	return str, nil
}

// Verify checks signature, issuer and expiry of token and returns the email
// it was issued to. Every failure is reported as Unauthenticated.
func (t *Tokens) Verify(token string) (string, error) {
	if len(t.secret) == 0 {
		return "", Unauthenticated{Reason: "no secret configured"}
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(t.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", Unauthenticated{Reason: "malformed token"}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", Unauthenticated{Reason: "invalid signature"}
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", Unauthenticated{Reason: "token expired"}
	case err != nil:
		return "", Unauthenticated{Reason: "invalid token"}
	case !parsed.Valid:
		return "", Unauthenticated{Reason: "invalid token"}
	case claims.Email == "":
		return "", Unauthenticated{Reason: "missing email claim"}
	}
	return claims.Email, nil
}
