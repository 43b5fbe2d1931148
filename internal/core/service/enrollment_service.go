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

// EnrollmentService implements enrollment creation and lifecycle.
//
// Uniqueness of (student, course) is decided by the store, not by this
// service: the lookup in Enroll only short-circuits the common case, and a
// concurrent insert that slips past it is rejected by the store's unique
// constraint and reported with the same error.
type EnrollmentService struct {
	enrollments ports.EnrollmentRepository
	courses     ports.CourseRepository
	users       ports.UserRepository
	log         zerolog.Logger
	now         func() time.Time
}

func NewEnrollmentService(
	enrollments ports.EnrollmentRepository,
	courses ports.CourseRepository,
	users ports.UserRepository,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments, courses: courses, users: users, log: log, now: time.Now}
}

// Enroll creates an enrollment in status enrolled. Students enroll
// themselves; an admin may name another user, who must exist and hold the
// student role.
func (s *EnrollmentService) Enroll(ctx context.Context, principal domain.Principal, in ports.EnrollInput) (*domain.Enrollment, error) {
	courseID := strings.TrimSpace(in.CourseID)
	if courseID == "" {
		return nil, domain.NewValidationError(map[string]string{"course_id": "course_id is required"})
	}

	studentID := principal.SubjectID
	if in.StudentID != "" && in.StudentID != principal.SubjectID {
		if err := domain.AuthorizeMutation(principal, in.StudentID); err != nil {
			metrics.AuthzDenialsTotal.WithLabelValues("ownership").Inc()
			return nil, err
		}
		target, err := s.users.FindByID(ctx, in.StudentID)
		if err != nil {
			return nil, err
		}
		if target.Role != domain.RoleStudent {
			return nil, domain.NewValidationError(map[string]string{"student_id": "student_id must refer to a student"})
		}
		studentID = target.ID
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, err
	}

	existing, err := s.enrollments.FindByStudentAndCourse(ctx, studentID, courseID)
	switch {
	case err == nil && existing != nil:
		metrics.EnrollmentConflictsTotal.WithLabelValues("precheck").Inc()
		return nil, domain.ErrAlreadyEnrolled
	case err != nil && !errors.Is(err, domain.ErrEnrollmentNotFound):
		return nil, fmt.Errorf("enroll: lookup: %w", err)
	}

	now := s.now().UTC()
	created, err := s.enrollments.Create(ctx, &domain.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    domain.StatusEnrolled,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			metrics.EnrollmentConflictsTotal.WithLabelValues("constraint").Inc()
			s.log.Debug().Str("student_id", studentID).Str("course_id", courseID).Msg("concurrent enroll rejected by unique constraint")
			return nil, domain.ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("enroll: insert: %w", err)
	}

	metrics.EnrollmentsCreatedTotal.Inc()
	s.log.Info().
		Str("enrollment_id", created.ID).
		Str("student_id", studentID).
		Str("course_id", courseID).
		Msg("student enrolled")
	return created, nil
}

// List returns enrollments visible to principal. Students only ever see
// their own, whatever the filter says.
func (s *EnrollmentService) List(ctx context.Context, principal domain.Principal, filter ports.EnrollmentFilter) ([]*domain.Enrollment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if principal.Role == domain.RoleStudent {
		filter.StudentID = principal.SubjectID
	}
	return s.enrollments.List(ctx, filter)
}

// UpdateStatus moves an enrollment along the status machine. The status
// value is validated before anything is loaded.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, principal domain.Principal, id, status string) (*domain.Enrollment, error) {
	next, err := domain.ParseEnrollmentStatus(strings.ToLower(strings.TrimSpace(status)))
	if err != nil {
		return nil, err
	}

	enrollment, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if !enrollment.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, enrollment.Status, next)
	}

	updated, err := s.enrollments.UpdateStatus(ctx, id, enrollment.Status, next)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("enrollment_id", id).
		Str("from", string(enrollment.Status)).
		Str("to", string(next)).
		Msg("enrollment status changed")
	return updated, nil
}

// Delete removes the enrollment record, which frees the pair for a new
// enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	if _, err := s.loadOwned(ctx, principal, id); err != nil {
		return err
	}
	return s.enrollments.Delete(ctx, id)
}

func (s *EnrollmentService) loadOwned(ctx context.Context, principal domain.Principal, id string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeMutation(principal, enrollment.OwnerID()); err != nil {
		metrics.AuthzDenialsTotal.WithLabelValues("ownership").Inc()
		return nil, err
	}
	return enrollment, nil
}
