package ports

import (
	"context"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

// EnrollmentFilter carries equality filters for listing and bulk deletion.
// Empty fields are ignored.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    domain.EnrollmentStatus
}

// IsEmpty reports whether no field is set.
func (f EnrollmentFilter) IsEmpty() bool {
	return f.StudentID == "" && f.CourseID == "" && f.Status == ""
}

// EnrollmentRepository persists enrollments.
//
// The store guarantees at most one enrollment per (StudentID, CourseID).
// Create returns domain.ErrDuplicateKey when that constraint rejects the
// insert; it never returns a partially written record.
type EnrollmentRepository interface {
	Create(ctx context.Context, e *domain.Enrollment) (*domain.Enrollment, error)
	FindByID(ctx context.Context, id string) (*domain.Enrollment, error)
	// FindByStudentAndCourse returns domain.ErrEnrollmentNotFound when the
	// pair has no record.
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]*domain.Enrollment, error)
	// UpdateStatus moves the enrollment from one status to another only if it
	// is still in from; otherwise it returns domain.ErrInvalidTransition, or
	// domain.ErrEnrollmentNotFound when the record no longer exists.
	UpdateStatus(ctx context.Context, id string, from, to domain.EnrollmentStatus) (*domain.Enrollment, error)
	Delete(ctx context.Context, id string) error
	// DeleteMatching removes every enrollment matching filter and reports how
	// many were removed. An empty filter is rejected.
	DeleteMatching(ctx context.Context, filter EnrollmentFilter) (int64, error)
}
