// Package hash provides the keyed one-way transform used to store OTPs.
//
// A code is never stored in plaintext: the store keeps a Digest, the pair of a
// per-record random salt and HMAC-SHA256(key, code||salt). The key lives only in
// process configuration.
package hash

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-otp-auth/internal/domain"
)

// SaltBytes is the amount of random data in every salt (128 bits).
const SaltBytes = 16

var errMalformedDigest = errors.New("malformed code digest")

// Digest is the stored form of an OTP.
type Digest struct {
	Salt string
	Sum  string
}

// String encodes the digest as "<salt>:<sum>".
func (d Digest) String() string {
	return d.Salt + ":" + d.Sum
}

// ParseDigest decodes the "<salt>:<sum>" form written by Digest.String.
func ParseDigest(s string) (Digest, error) {
	salt, sum, ok := strings.Cut(s, ":")
	if !ok || salt == "" || sum == "" {
		return Digest{}, errMalformedDigest
	}
	return Digest{Salt: salt, Sum: sum}, nil
}

// HMAC is the secret hasher. It is safe for concurrent use.
type HMAC struct {
	key []byte
}

// NewHMAC returns a hasher keyed by secret.
func NewHMAC(secret string) (*HMAC, error) {
	if secret == "" {
		return nil, fmt.Errorf("empty hashing key: %w", domain.ErrConfig)
	}
	return &HMAC{key: []byte(secret)}, nil
}

// Sum returns hex(HMAC-SHA256(key, code||salt)).
func (h *HMAC) Sum(code, salt string) string {
	m := hmac.New(sha256.New, h.key)
	m.Write([]byte(code))
	m.Write([]byte(salt))
	return hex.EncodeToString(m.Sum(nil))
}

// Digest salts and hashes code with a fresh salt.
func (h *HMAC) Digest(code string) (Digest, error) {
	salt, err := NewSalt()
	if err != nil {
		return Digest{}, err
	}
	return Digest{Salt: salt, Sum: h.Sum(code, salt)}, nil
}

// Verify recomputes the digest of code with d's salt and compares in constant time.
func (h *HMAC) Verify(code string, d Digest) bool {
	return subtle.ConstantTimeCompare([]byte(h.Sum(code, d.Salt)), []byte(d.Sum)) == 1
}

// NewSalt returns SaltBytes of crypto/rand data, hex encoded.
func NewSalt() (string, error) {
	b := make([]byte, SaltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}
