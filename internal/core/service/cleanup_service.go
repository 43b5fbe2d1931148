package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lms-g2/lms-api/internal/core/ports"
	"github.com/lms-g2/lms-api/internal/pkg/metrics"
)

type cleanupService struct {
	enrollments ports.EnrollmentRepository
	log         zerolog.Logger
}

// NewCleanupService returns a CleanupService that removes enrollments left
// behind by deleted courses and users.
func NewCleanupService(enrollments ports.EnrollmentRepository, log zerolog.Logger) ports.CleanupService {
	return &cleanupService{enrollments: enrollments, log: log}
}

func (s *cleanupService) Process(ctx context.Context, job ports.CleanupJob) error {
	start := time.Now()
	defer func() {
		metrics.CleanupDuration.WithLabelValues(string(job.Kind)).Observe(time.Since(start).Seconds())
	}()

	var filter ports.EnrollmentFilter
	switch job.Kind {
	case ports.CleanupCourse:
		filter.CourseID = job.ID
	case ports.CleanupStudent:
		filter.StudentID = job.ID
	default:
		metrics.CleanupJobsTotal.WithLabelValues(string(job.Kind), "error").Inc()
		return fmt.Errorf("cleanup: unknown kind %q", job.Kind)
	}
	if job.ID == "" {
		metrics.CleanupJobsTotal.WithLabelValues(string(job.Kind), "error").Inc()
		return fmt.Errorf("cleanup: empty %s id", job.Kind)
	}

	n, err := s.enrollments.DeleteMatching(ctx, filter)
	if err != nil {
		metrics.CleanupJobsTotal.WithLabelValues(string(job.Kind), "error").Inc()
		return fmt.Errorf("cleanup %s %s: %w", job.Kind, job.ID, err)
	}

	metrics.CleanupJobsTotal.WithLabelValues(string(job.Kind), "ok").Inc()
	s.log.Info().
		Str("kind", string(job.Kind)).
		Str("id", job.ID).
		Int64("removed", n).
		Msg("enrollments cleaned up")
	return nil
}
