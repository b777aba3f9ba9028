// Package auth hashes and verifies the static API key that protects the HTTP
// surface.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrInvalidHash is returned when a stored hash is not in the encoded argon2id form.
	ErrInvalidHash = errors.New("auth: invalid api key hash format")
	// ErrIncompatibleVersion is returned for hashes produced by another argon2 version.
	ErrIncompatibleVersion = errors.New("auth: incompatible argon2 version")
	// ErrInvalidKey is returned when a presented key does not match the hash.
	ErrInvalidKey = errors.New("auth: invalid api key")
)

// Params controls the argon2id cost.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams is used by the hash-key command.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// HashKey derives the encoded argon2id hash of key:
// $argon2id$v=19$m=...,t=...,p=...$salt$hash
func HashKey(key string, params Params) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}

	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: read salt: %w", err)
	}

	hash := argon2.IDKey([]byte(key), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Iterations, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyKey checks key against an encoded argon2id hash.
func VerifyKey(encoded, key string) error {
	params, salt, want, err := decodeHash(encoded)
	if err != nil {
		return err
	}

	got := argon2.IDKey([]byte(key), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	if subtle.ConstantTimeCompare(want, got) == 1 {
		return nil
	}
	return ErrInvalidKey
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return Params{}, nil, nil, ErrIncompatibleVersion
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	// argon2.IDKey panics on zero passes or zero lanes.
	if params.Iterations == 0 || params.Parallelism == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(hash))
	return params, salt, hash, nil
}

// Verifier checks presented keys against one configured hash. After the first
// successful argon2id verification the SHA-256 digest of the accepted key is
// kept so later requests skip the key derivation.
type Verifier struct {
	encoded string

	mu       sync.RWMutex
	accepted []byte
}

// NewVerifier validates the encoded hash and returns a Verifier for it.
func NewVerifier(encoded string) (*Verifier, error) {
	if _, _, _, err := decodeHash(encoded); err != nil {
		return nil, err
	}
	return &Verifier{encoded: encoded}, nil
}

// Verify returns nil when key matches the configured hash.
func (v *Verifier) Verify(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	digest := sha256.Sum256([]byte(key))

	v.mu.RLock()
	accepted := v.accepted
	v.mu.RUnlock()
	if accepted != nil && subtle.ConstantTimeCompare(accepted, digest[:]) == 1 {
		return nil
	}

	if err := VerifyKey(v.encoded, key); err != nil {
		return err
	}

	v.mu.Lock()
	v.accepted = digest[:]
	v.mu.Unlock()
	return nil
}
