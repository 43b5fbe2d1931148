package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/pkg/metrics"
)

// TokenTTL is the fixed lifetime of an access token.
const TokenTTL = 7 * 24 * time.Hour

// tokenClaims is the signed payload: sub carries the user id.
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens with a single
// process-wide key. The key is read once at construction and never mutated.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenService(key []byte) *TokenService {
	return &TokenService{key: key, ttl: TokenTTL, now: time.Now}
}

// Issue signs a token for subjectID with the given role. Expiry is fixed at
// TokenTTL after issue.
func (s *TokenService) Issue(subjectID string, role domain.Role) (string, error) {
	if len(s.key) == 0 {
		return "", domain.ErrSigningUnavailable
	}

	now := s.now()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSigningUnavailable, err)
	}
	metrics.TokensIssuedTotal.WithLabelValues(role.String()).Inc()
	return signed, nil
}

// Verify checks the signature and expiry of token and returns the principal
// it names. Every failure is reported as domain.ErrInvalidToken; the cause is
// wrapped alongside for logging.
func (s *TokenService) Verify(token string) (domain.Principal, error) {
	if len(s.key) == 0 {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidToken, claims.Role)
	}
	if claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	return domain.Principal{SubjectID: claims.Subject, Role: role}, nil
}
