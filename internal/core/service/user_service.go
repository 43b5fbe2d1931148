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
)

// UserService implements account administration.
type UserService struct {
	users   ports.UserRepository
	hasher  *PasswordHasher
	cleanup ports.CleanupScheduler
	log     zerolog.Logger
	now     func() time.Time
}

func NewUserService(users ports.UserRepository, hasher *PasswordHasher, cleanup ports.CleanupScheduler, log zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, cleanup: cleanup, log: log, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Create adds an account. Unlike self-registration the role is mandatory.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	fields := userFieldErrors(in.Name, email, in.Password)
	role, err := domain.ParseRole(strings.ToLower(strings.TrimSpace(in.Role)))
	if err != nil {
		if fields == nil {
			fields = make(map[string]string)
		}
		fields["role"] = "role must be one of: student instructor admin"
	}
	if fields != nil {
		return nil, domain.NewValidationError(fields)
	}

	user, err := createUser(ctx, s.users, s.hasher, s.now(), strings.TrimSpace(in.Name), email, in.Password, role)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user created")
	return user, nil
}

// Update applies a partial update. Changing the email re-runs the uniqueness
// check against other accounts.
func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	fields := make(map[string]string)
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		fields["name"] = "name must not be empty"
	}
	var email string
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
		if !validEmail(email) {
			fields["email"] = "email must be a valid email"
		}
	}
	if in.Password != nil && len(*in.Password) < minPasswordLength {
		fields["password"] = "password must be at least 6 characters"
	}
	var role domain.Role
	if in.Role != nil {
		r, err := domain.ParseRole(strings.ToLower(strings.TrimSpace(*in.Role)))
		if err != nil {
			fields["role"] = "role must be one of: student instructor admin"
		}
		role = r
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && email != user.Email {
		existing, err := s.users.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, domain.ErrEmailTaken
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		user.Email = email
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		user.Role = role
	}
	if in.Password != nil {
		digest, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordDigest = digest
	}
	user.UpdatedAt = s.now().UTC()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Delete removes the account and schedules removal of its enrollments.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if s.cleanup != nil {
		if err := s.cleanup.Schedule(ports.CleanupJob{Kind: ports.CleanupStudent, ID: id}); err != nil {
			s.log.Warn().Err(err).Str("user_id", id).Msg("enrollment cleanup not scheduled")
		}
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
