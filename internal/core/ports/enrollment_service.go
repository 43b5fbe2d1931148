package ports

import (
	"context"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

// EnrollInput names the course to join. StudentID is honoured only for
// admins; students always enroll themselves.
type EnrollInput struct {
	CourseID  string
	StudentID string
}

// EnrollmentService enforces one enrollment per (student, course) pair and
// the enrollment status machine.
type EnrollmentService interface {
	Enroll(ctx context.Context, principal domain.Principal, in EnrollInput) (*domain.Enrollment, error)
	List(ctx context.Context, principal domain.Principal, filter EnrollmentFilter) ([]*domain.Enrollment, error)
	UpdateStatus(ctx context.Context, principal domain.Principal, id, status string) (*domain.Enrollment, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
}
