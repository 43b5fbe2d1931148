package ports

import (
	"context"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

// CourseFilter narrows List. Zero values mean no filter.
type CourseFilter struct {
	InstructorID string
}

// CourseRepository persists courses.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) (*domain.Course, error)
	FindByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) (*domain.Course, error)
	Delete(ctx context.Context, id string) error
}

// CourseCache is a read-through cache in front of CourseRepository.FindByID.
// Implementations report a miss as a nil course with a nil error. Ownership
// decisions never use cached values.
//
// Get also returns the entry's generation. Invalidate advances it, and Set
// silently drops a course read under an older generation, so a reader that
// raced with an update cannot put the old row back.
type CourseCache interface {
	Get(ctx context.Context, id string) (*domain.Course, int64, error)
	Set(ctx context.Context, course *domain.Course, gen int64) error
	Invalidate(ctx context.Context, id string) error
}
