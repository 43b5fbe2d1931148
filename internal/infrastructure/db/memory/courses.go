package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
)

type CourseRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Course
}

func NewCourseRepository() *CourseRepository {
	return &CourseRepository{byID: make(map[string]*domain.Course)}
}

func cloneCourse(c *domain.Course) *domain.Course {
	cp := *c
	return &cp
}

func (r *CourseRepository) Create(_ context.Context, course *domain.Course) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneCourse(course)
	stored.ID = uuid.NewString()
	r.byID[stored.ID] = stored
	return cloneCourse(stored), nil
}

func (r *CourseRepository) FindByID(_ context.Context, id string) (*domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

func (r *CourseRepository) List(_ context.Context, filter ports.CourseFilter) ([]*domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Course, 0, len(r.byID))
	for _, c := range r.byID {
		if filter.InstructorID != "" && c.InstructorID != filter.InstructorID {
			continue
		}
		out = append(out, cloneCourse(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CourseRepository) Update(_ context.Context, course *domain.Course) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[course.ID]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	stored := cloneCourse(course)
	stored.CreatedAt = current.CreatedAt
	stored.InstructorID = current.InstructorID
	r.byID[stored.ID] = stored
	return cloneCourse(stored), nil
}

func (r *CourseRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(r.byID, id)
	return nil
}
