// Package auth keeps the credentials of reviewbox users and hands out
// the bearer tokens used to reach protected endpoints.
//
// Passwords are never stored. Each one is stretched with Argon2id using a
// random per-user salt and only the encoded result is kept in the store,
// together with the parameters used to derive it, so the work factor can
// be raised later without invalidating existing users.
//
// A successful login returns a signed JWT carrying the user email. The
// server keeps no session table: a token is valid as long as its signature
// matches the process secret and its expiry is in the future. There is no
// revocation, deleting a user is what makes their outstanding tokens
// useless (they still verify, but point to nobody).
//
// The secret is read once at startup from an environment variable, which
// is cleared right after. Rotating it means restarting the process and
// asking every client to login again.
package auth
