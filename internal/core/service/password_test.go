package service

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

func newFastHasher(algorithm string) *PasswordHasher {
	h := NewPasswordHasher(algorithm)
	h.bcryptCost = bcrypt.MinCost
	return h
}

func TestPasswordHasher_Bcrypt(t *testing.T) {
	h := newFastHasher(HasherBcrypt)

	digest, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(digest, "$2a$") {
		t.Fatalf("expected bcrypt digest, got %q", digest)
	}

	ok, err := h.Verify("s3cret", digest)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong", digest)
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got ok=%v err=%v", ok, err)
	}
}

func TestPasswordHasher_Argon2id(t *testing.T) {
	h := newFastHasher(HasherArgon2id)

	digest, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$") {
		t.Fatalf("expected argon2id digest, got %q", digest)
	}

	ok, err := h.Verify("s3cret", digest)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong", digest)
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got ok=%v err=%v", ok, err)
	}
}

func TestPasswordHasher_VerifiesEitherFormat(t *testing.T) {
	bcryptDigest, _ := newFastHasher(HasherBcrypt).Hash("pw")
	argonDigest, _ := newFastHasher(HasherArgon2id).Hash("pw")

	h := newFastHasher(HasherBcrypt)
	for _, digest := range []string{bcryptDigest, argonDigest} {
		if ok, err := h.Verify("pw", digest); err != nil || !ok {
			t.Fatalf("Verify(%q) = %v, %v", digest[:10], ok, err)
		}
	}
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	h := newFastHasher(HasherBcrypt)

	for _, digest := range []string{"", "plaintext", "$2a$10$short", "$argon2id$v=19$garbage"} {
		ok, err := h.Verify("pw", digest)
		if ok {
			t.Fatalf("Verify(%q) must not match", digest)
		}
		if !errors.Is(err, domain.ErrMalformedDigest) {
			t.Fatalf("Verify(%q): expected ErrMalformedDigest, got %v", digest, err)
		}
		if domain.KindOf(err) != domain.ErrInternal {
			t.Fatalf("malformed digest must be internal, got %v", domain.KindOf(err))
		}
	}
}

func TestNewPasswordHasher_UnknownAlgorithmFallsBack(t *testing.T) {
	if h := NewPasswordHasher("md5"); h.algorithm != HasherBcrypt {
		t.Fatalf("expected bcrypt fallback, got %s", h.algorithm)
	}
}
