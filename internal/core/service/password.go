package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

// Supported digest algorithms for new passwords.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// PasswordHasher produces and verifies password digests. Verification
// accepts both bcrypt and argon2id digests regardless of the algorithm used
// for new ones, so switching algorithms never locks out existing accounts.
type PasswordHasher struct {
	algorithm   string
	bcryptCost  int
	argonParams *argon2id.Params
}

// NewPasswordHasher returns a hasher that creates digests with algorithm.
// Unknown values fall back to bcrypt.
func NewPasswordHasher(algorithm string) *PasswordHasher {
	if algorithm != HasherArgon2id {
		algorithm = HasherBcrypt
	}
	return &PasswordHasher{
		algorithm:   algorithm,
		bcryptCost:  bcrypt.DefaultCost,
		argonParams: argon2id.DefaultParams,
	}
}

// Hash returns a new digest for plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if h.algorithm == HasherArgon2id {
		digest, err := argon2id.CreateHash(plaintext, h.argonParams)
		if err != nil {
			return "", fmt.Errorf("argon2id hash: %w", err)
		}
		return digest, nil
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A digest that cannot be
// parsed yields domain.ErrMalformedDigest rather than a mismatch.
func (h *PasswordHasher) Verify(plaintext, digest string) (bool, error) {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		ok, err := argon2id.ComparePasswordAndHash(plaintext, digest)
		if err != nil {
			return false, fmt.Errorf("%w: %w", domain.ErrMalformedDigest, err)
		}
		return ok, nil

	case strings.HasPrefix(digest, "$2a$"), strings.HasPrefix(digest, "$2b$"), strings.HasPrefix(digest, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", domain.ErrMalformedDigest, err)
	}

	return false, domain.ErrMalformedDigest
}
