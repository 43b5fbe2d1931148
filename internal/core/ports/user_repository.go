package ports

import (
	"context"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

// UserRepository persists accounts. Email is unique: Create and Update return
// domain.ErrDuplicateKey when the store rejects a second account for the same
// address.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
