// Package password derives and checks password verifiers. The default scheme
// is bcrypt; the legacy scheme is the unsalted MD5 digest the original lab
// shipped with, kept behind an explicit opt-in for training deployments.
package password

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Scheme string

const (
	SchemeBcrypt    Scheme = "bcrypt"
	SchemeLegacyMD5 Scheme = "legacy-md5"
)

type Hasher struct {
	scheme Scheme
	cost   int
}

// NewHasher returns a bcrypt hasher at the given cost. When legacy is true
// the hasher instead produces unsalted MD5 digests.
func NewHasher(cost int, legacy bool) *Hasher {
	scheme := SchemeBcrypt
	if legacy {
		scheme = SchemeLegacyMD5
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{scheme: scheme, cost: cost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	switch h.scheme {
	case SchemeLegacyMD5:
		sum := md5.Sum([]byte(plaintext))
		return hex.EncodeToString(sum[:]), nil
	default:
		hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		if err != nil {
			return "", fmt.Errorf("hash password: %w", err)
		}
		return string(hashed), nil
	}
}

// Verify reports whether plaintext matches the stored verifier. Bcrypt
// verifiers are recognized by prefix so accounts created before a scheme
// change keep working either way.
func (h *Hasher) Verify(stored, plaintext string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)) == nil
	}

	sum := md5.Sum([]byte(plaintext))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(stored), []byte(digest)) == 1
}

func isBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
