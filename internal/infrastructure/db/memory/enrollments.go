package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
)

type pairKey struct {
	studentID string
	courseID  string
}

// EnrollmentRepository keeps at most one enrollment per (student, course)
// pair. The check and the insert happen under the same lock.
type EnrollmentRepository struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Enrollment
	byPair map[pairKey]string
}

func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{
		byID:   make(map[string]*domain.Enrollment),
		byPair: make(map[pairKey]string),
	}
}

func cloneEnrollment(e *domain.Enrollment) *domain.Enrollment {
	cp := *e
	return &cp
}

func matches(e *domain.Enrollment, f ports.EnrollmentFilter) bool {
	if f.StudentID != "" && e.StudentID != f.StudentID {
		return false
	}
	if f.CourseID != "" && e.CourseID != f.CourseID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

func (r *EnrollmentRepository) Create(_ context.Context, e *domain.Enrollment) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{studentID: e.StudentID, courseID: e.CourseID}
	if _, exists := r.byPair[key]; exists {
		return nil, domain.ErrDuplicateKey
	}
	stored := cloneEnrollment(e)
	stored.ID = uuid.NewString()
	r.byID[stored.ID] = stored
	r.byPair[key] = stored.ID
	return cloneEnrollment(stored), nil
}

func (r *EnrollmentRepository) FindByID(_ context.Context, id string) (*domain.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEnrollmentNotFound
	}
	return cloneEnrollment(e), nil
}

func (r *EnrollmentRepository) FindByStudentAndCourse(_ context.Context, studentID, courseID string) (*domain.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[pairKey{studentID: studentID, courseID: courseID}]
	if !ok {
		return nil, domain.ErrEnrollmentNotFound
	}
	return cloneEnrollment(r.byID[id]), nil
}

func (r *EnrollmentRepository) List(_ context.Context, filter ports.EnrollmentFilter) ([]*domain.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Enrollment, 0)
	for _, e := range r.byID {
		if matches(e, filter) {
			out = append(out, cloneEnrollment(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *EnrollmentRepository) UpdateStatus(_ context.Context, id string, from, to domain.EnrollmentStatus) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEnrollmentNotFound
	}
	if e.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	e.Status = to
	e.UpdatedAt = time.Now().UTC()
	return cloneEnrollment(e), nil
}

func (r *EnrollmentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return domain.ErrEnrollmentNotFound
	}
	delete(r.byPair, pairKey{studentID: e.StudentID, courseID: e.CourseID})
	delete(r.byID, id)
	return nil
}

var errEmptyFilter = errors.New("memory: refusing to delete with an empty filter")

func (r *EnrollmentRepository) DeleteMatching(_ context.Context, filter ports.EnrollmentFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, errEmptyFilter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, e := range r.byID {
		if !matches(e, filter) {
			continue
		}
		delete(r.byPair, pairKey{studentID: e.StudentID, courseID: e.CourseID})
		delete(r.byID, id)
		n++
	}
	return n, nil
}
