package user

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the default cost for bcrypt hashing.
	DefaultBcryptCost = 12

	// bcryptMaxPasswordBytes is bcrypt's input limit.
	bcryptMaxPasswordBytes = 72
)

// PasswordHasher turns plaintext passwords into stored digests and checks
// candidates against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
	// NeedsRehash reports whether digest was produced by another scheme.
	NeedsRehash(digest string) bool
	// MaxPasswordBytes is the longest accepted password, 0 when unbounded.
	MaxPasswordBytes() int
}

// NewPasswordHasher returns the hasher for scheme ("sha256" or "bcrypt").
func NewPasswordHasher(scheme string, bcryptCost int) PasswordHasher {
	if scheme == "bcrypt" {
		if bcryptCost == 0 {
			bcryptCost = DefaultBcryptCost
		}
		return &BcryptHasher{cost: bcryptCost}
	}
	return SHA256Hasher{}
}

// SHA256Hasher is the legacy scheme: an unsalted SHA-256 digest of the UTF-8
// password, base64 (standard, padded) encoded. Equal passwords give equal
// digests.
type SHA256Hasher struct{}

// Hash returns the digest of password.
func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// Verify compares in constant time.
func (h SHA256Hasher) Verify(password, digest string) bool {
	candidate, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1
}

// NeedsRehash is always false. Bcrypt digests do not verify under this
// scheme, so there is no downgrade path.
func (SHA256Hasher) NeedsRehash(string) bool {
	return false
}

// MaxPasswordBytes returns 0.
func (SHA256Hasher) MaxPasswordBytes() int {
	return 0
}

// BcryptHasher hashes with bcrypt and still accepts legacy SHA-256 digests,
// so existing accounts keep working after the scheme is switched.
type BcryptHasher struct {
	cost int
}

// Hash generates a bcrypt hash of the given password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify checks password against a bcrypt or legacy digest.
func (h *BcryptHasher) Verify(password, digest string) bool {
	if !isBcryptDigest(digest) {
		return SHA256Hasher{}.Verify(password, digest)
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// NeedsRehash is true for legacy digests.
func (h *BcryptHasher) NeedsRehash(digest string) bool {
	return !isBcryptDigest(digest)
}

// MaxPasswordBytes returns bcrypt's 72 byte limit.
func (h *BcryptHasher) MaxPasswordBytes() int {
	return bcryptMaxPasswordBytes
}

func isBcryptDigest(digest string) bool {
	return strings.HasPrefix(digest, "$2")
}
