package ports

import (
	"context"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

type CreateCourseInput struct {
	Title       string
	Description string
}

// UpdateCourseInput carries a partial update; nil fields are left unchanged.
type UpdateCourseInput struct {
	Title       *string
	Description *string
}

// CourseService manages courses. Mutations apply the ownership gate after
// loading the course.
type CourseService interface {
	List(ctx context.Context, filter CourseFilter) ([]*domain.Course, error)
	Get(ctx context.Context, id string) (*domain.Course, error)
	Create(ctx context.Context, principal domain.Principal, in CreateCourseInput) (*domain.Course, error)
	Update(ctx context.Context, principal domain.Principal, id string, in UpdateCourseInput) (*domain.Course, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
}
