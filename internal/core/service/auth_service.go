package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
	"github.com/lms-g2/lms-api/internal/pkg/metrics"
)

// AuthService implements registration, login and identity lookup.
type AuthService struct {
	users  ports.UserRepository
	tokens *TokenService
	hasher *PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(users ports.UserRepository, tokens *TokenService, hasher *PasswordHasher, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, log: log, now: time.Now}
}

// Register creates a user and returns a token for it. Role defaults to
// student. A taken email yields domain.ErrEmailTaken whether it is caught by
// the lookup or by the store's unique index.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error) {
	email := normalizeEmail(in.Email)
	fields := userFieldErrors(in.Name, email, in.Password)
	role, err := parseOptionalRole(in.Role, domain.RoleStudent)
	if err != nil {
		if fields == nil {
			fields = make(map[string]string)
		}
		fields["role"] = "role must be one of: student instructor admin"
	}
	if fields != nil {
		return "", nil, domain.NewValidationError(fields)
	}

	user, err := createUser(ctx, s.users, s.hasher, s.now(), strings.TrimSpace(in.Name), email, in.Password, role)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")
	return token, user, nil
}

// Login exchanges credentials for a token. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		metrics.AuthFailuresTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("invalid_credentials").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordDigest)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password digest is unreadable")
		return "", nil, err
	}
	if !ok {
		metrics.AuthFailuresTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Me returns the account behind principal. The role reported is the stored
// one, which may differ from the role in the caller's token until re-login.
func (s *AuthService) Me(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, principal.SubjectID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// createUser hashes the password and inserts the account, applying the
// lookup-then-constraint uniqueness check on email.
func createUser(
	ctx context.Context,
	users ports.UserRepository,
	hasher *PasswordHasher,
	now time.Time,
	name, email, password string,
	role domain.Role,
) (*domain.User, error) {
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	digest, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	created, err := users.Create(ctx, &domain.User{
		Name:           name,
		Email:          email,
		PasswordDigest: digest,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}
