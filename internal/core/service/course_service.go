package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
	"github.com/lms-g2/lms-api/internal/pkg/metrics"
)

// CourseService implements course management. Reads of a single course go
// through the cache when one is configured; mutations always load from the
// repository so the ownership gate sees the stored owner.
type CourseService struct {
	courses ports.CourseRepository
	cache   ports.CourseCache
	cleanup ports.CleanupScheduler
	log     zerolog.Logger
	now     func() time.Time
}

// NewCourseService wires the service. cache and cleanup may be nil.
func NewCourseService(
	courses ports.CourseRepository,
	cache ports.CourseCache,
	cleanup ports.CleanupScheduler,
	log zerolog.Logger,
) *CourseService {
	return &CourseService{courses: courses, cache: cache, cleanup: cleanup, log: log, now: time.Now}
}

func (s *CourseService) List(ctx context.Context, filter ports.CourseFilter) ([]*domain.Course, error) {
	return s.courses.List(ctx, filter)
}

// Get returns a course, serving it from the cache when possible. Cache
// failures are logged and the repository is used instead. The generation is
// read before the repository so the write-back loses to a concurrent update.
func (s *CourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	var gen int64
	cacheable := false
	if s.cache != nil {
		cached, g, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			metrics.CourseCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Str("course_id", id).Msg("course cache read failed, falling back to store")
		case cached != nil:
			metrics.CourseCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.CourseCacheTotal.WithLabelValues("miss").Inc()
			gen, cacheable = g, true
		}
	}

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, course, gen); err != nil {
			s.log.Warn().Err(err).Str("course_id", id).Msg("course cache write failed")
		}
	}
	return course, nil
}

// Create stores a course owned by the caller.
func (s *CourseService) Create(ctx context.Context, principal domain.Principal, in ports.CreateCourseInput) (*domain.Course, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewValidationError(map[string]string{"title": "title is required"})
	}

	now := s.now().UTC()
	created, err := s.courses.Create(ctx, &domain.Course{
		Title:        title,
		Description:  in.Description,
		InstructorID: principal.SubjectID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.log.Info().Str("course_id", created.ID).Str("instructor_id", created.InstructorID).Msg("course created")
	return created, nil
}

// Update applies a partial update after the ownership gate admits the caller.
func (s *CourseService) Update(ctx context.Context, principal domain.Principal, id string, in ports.UpdateCourseInput) (*domain.Course, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, domain.NewValidationError(map[string]string{"title": "title must not be empty"})
	}

	course, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		course.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		course.Description = *in.Description
	}
	course.UpdatedAt = s.now().UTC()

	s.invalidate(ctx, id)
	updated, err := s.courses.Update(ctx, course)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

// Delete removes the course after the ownership gate admits the caller and
// schedules removal of its enrollments.
func (s *CourseService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	if _, err := s.loadOwned(ctx, principal, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	if s.cleanup != nil {
		if err := s.cleanup.Schedule(ports.CleanupJob{Kind: ports.CleanupCourse, ID: id}); err != nil {
			s.log.Warn().Err(err).Str("course_id", id).Msg("enrollment cleanup not scheduled")
		}
	}
	s.log.Info().Str("course_id", id).Str("by", principal.SubjectID).Msg("course deleted")
	return nil
}

// loadOwned loads the course (404 first) and then applies the ownership gate.
func (s *CourseService) loadOwned(ctx context.Context, principal domain.Principal, id string) (*domain.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeMutation(principal, course.OwnerID()); err != nil {
		metrics.AuthzDenialsTotal.WithLabelValues("ownership").Inc()
		return nil, err
	}
	return course, nil
}

func (s *CourseService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("course_id", id).Msg("course cache invalidation failed")
	}
}
