package ports

import (
	"context"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

// RegisterInput is the self-service sign-up payload. Role is optional and
// defaults to student.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthService issues tokens for valid credentials.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, principal domain.Principal) (*domain.User, error)
}
