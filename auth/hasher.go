package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

type (
	// HasherParams controls the Argon2id work factor.
	HasherParams struct {
		Time    uint32
		Memory  uint32 // KiB
		Threads uint8
		SaltLen uint32
		KeyLen  uint32
	}

	Hasher struct {
		params HasherParams
		random io.Reader
	}
)

const (
	// upper bound accepted when decoding a stored hash, a corrupt row
	// should not be able to make us allocate the whole machine
	maxHashMemory = 1 << 20
	maxHashTime   = 64
)

// DefaultHasherParams makes 7 passes over 10 MiB per password, which costs
// about the same as a single pass over 64 MiB.
func DefaultHasherParams() HasherParams {
	threads := runtime.NumCPU() / 2
	if threads < 1 {
		threads = 1
	} else if threads > 255 {
		threads = 255
	}
	return HasherParams{
		Time:    7,
		Memory:  10 * 1024,
		Threads: uint8(threads),
		SaltLen: 16,
		KeyLen:  32,
	}
}

// NewHasher returns a Hasher that reads salts from random,
// crypto/rand is used when random is nil.
func NewHasher(params HasherParams, random io.Reader) *Hasher {
	if random == nil {
		random = rand.Reader
	}
	return &Hasher{params: params, random: random}
}

// Hash derives a new salted hash, two calls with the same password never
// return the same value.
func (h *Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(h.random, salt); err != nil {
		return "", fmt.Errorf("auth: unable to generate salt, cause %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether plain matches the encoded hash. A hash that cannot
// be decoded returns false and InvalidHashFormat.
func (h *Hasher) Verify(plain, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	other := argon2.IDKey([]byte(plain), salt, params.Time, params.Memory, params.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func decodeHash(encoded string) (HasherParams, []byte, []byte, error) {
	var p HasherParams
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, InvalidHashFormat{Reason: "unexpected number of segments"}
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, InvalidHashFormat{Reason: fmt.Sprintf("unsupported algorithm %q", parts[1])}
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, InvalidHashFormat{Reason: "unable to read version"}
	} else if version != argon2.Version {
		return p, nil, nil, InvalidHashFormat{Reason: fmt.Sprintf("unsupported version %v", version)}
	}
	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &threads); err != nil {
		return p, nil, nil, InvalidHashFormat{Reason: "unable to read parameters"}
	}
	if p.Time == 0 || p.Time > maxHashTime || p.Memory == 0 || p.Memory > maxHashMemory || threads == 0 || threads > 255 {
		return p, nil, nil, InvalidHashFormat{Reason: "parameters out of range"}
	}
	p.Threads = uint8(threads)
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, InvalidHashFormat{Reason: "unable to decode salt"}
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, InvalidHashFormat{Reason: "unable to decode key"}
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
