// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// PasswordHasher provides one-way password hashing and verification. The
// directory stores only digests; plaintext never leaves the call stack.
type PasswordHasher interface {
	// Hash produces a digest of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the digest.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// for a digest the hasher cannot parse.
	Verify(password, digest string) (bool, error)

	// NeedsUpgrade reports whether the stored digest predates this hasher's
	// format and should be re-hashed on the next successful login.
	NeedsUpgrade(digest string) bool

	// DummyDigest returns a well-formed digest in this hasher's format that
	// matches no password. Verifying against it must cost the same as
	// verifying against a real digest, so failure paths that have no stored
	// digest to check are not cheaper to probe.
	DummyDigest() string
}

// SHA256Hasher is the legacy scheme: a deterministic, unsalted hex SHA-256
// digest. The same password always hashes identically, which makes digests
// comparable across users; kept as the default for parity with existing
// directories. New deployments should prefer Argon2idHasher.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Hash produces the hex SHA-256 digest of the password.
func (h *SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest and compares in constant time.
func (h *SHA256Hasher) Verify(password, digest string) (bool, error) {
	sum := sha256.Sum256([]byte(password))
	computed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1, nil
}

// NeedsUpgrade always returns false; there is no older scheme to migrate
// from.
func (h *SHA256Hasher) NeedsUpgrade(string) bool {
	return false
}

// sha256DummyDigest is 64 hex zeros: the right shape for a SHA-256 digest,
// but no password hashes to it.
//
//nolint:gosec // G101: intentionally fake digest, not a credential
const sha256DummyDigest = "0000000000000000000000000000000000000000000000000000000000000000"

// DummyDigest returns a hex digest that matches no password.
func (h *SHA256Hasher) DummyDigest() string {
	return sha256DummyDigest
}

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// Argon2idHasher implements PasswordHasher using salted argon2id in PHC
// string format. Selecting it upgrades legacy SHA-256 digests on login.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id digest of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify checks if the password matches the digest.
func (h *Argon2idHasher) Verify(password, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid digest format")
	}
	if parts[1] != "argon2id" {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	if threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d exceeds uint8 max", threads)
	}
	keyLen := len(expected)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// NeedsUpgrade returns true for anything that is not an argon2id digest,
// i.e. legacy SHA-256 hex digests.
func (h *Argon2idHasher) NeedsUpgrade(digest string) bool {
	return !strings.HasPrefix(digest, "$argon2id$")
}

// argon2DummyDigest parses as a real argon2id digest with the standard
// parameters, so verifying against it runs the full key derivation. The
// all-zero salt and hash match no password.
//
//nolint:gosec // G101: intentionally fake digest, not a credential
const argon2DummyDigest = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// DummyDigest returns an argon2id digest that matches no password.
func (h *Argon2idHasher) DummyDigest() string {
	return argon2DummyDigest
}
