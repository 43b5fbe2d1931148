package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
)

func TestEnrollmentRepository_UniquePairUnderConcurrency(t *testing.T) {
	repo := NewEnrollmentRepository()
	const n = 50

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(context.Background(), &domain.Enrollment{StudentID: "s1", CourseID: "c1", Status: domain.StatusEnrolled})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateKey):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || dupes != n-1 {
		t.Fatalf("expected 1 success and %d duplicates, got %d and %d", n-1, successes, dupes)
	}
}

func TestEnrollmentRepository_DeleteFreesPair(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository()

	e, err := repo.Create(ctx, &domain.Enrollment{StudentID: "s1", CourseID: "c1", Status: domain.StatusEnrolled})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByStudentAndCourse(ctx, "s1", "c1"); !errors.Is(err, domain.ErrEnrollmentNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := repo.Create(ctx, &domain.Enrollment{StudentID: "s1", CourseID: "c1", Status: domain.StatusEnrolled}); err != nil {
		t.Fatalf("re-create after delete: %v", err)
	}
}

func TestEnrollmentRepository_UpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository()
	e, _ := repo.Create(ctx, &domain.Enrollment{StudentID: "s1", CourseID: "c1", Status: domain.StatusEnrolled})

	if _, err := repo.UpdateStatus(ctx, e.ID, domain.StatusEnrolled, domain.StatusCompleted); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, e.ID, domain.StatusEnrolled, domain.StatusDropped); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for stale from-status, got %v", err)
	}
}

func TestEnrollmentRepository_UpdateStatusAfterDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository()
	e, _ := repo.Create(ctx, &domain.Enrollment{StudentID: "s1", CourseID: "c1", Status: domain.StatusEnrolled})
	if err := repo.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := repo.UpdateStatus(ctx, e.ID, domain.StatusEnrolled, domain.StatusCompleted)
	if !errors.Is(err, domain.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound for a deleted record, got %v", err)
	}
}

func TestEnrollmentRepository_DeleteMatching(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository()
	for _, pair := range [][2]string{{"s1", "c1"}, {"s2", "c1"}, {"s1", "c2"}} {
		if _, err := repo.Create(ctx, &domain.Enrollment{StudentID: pair[0], CourseID: pair[1], Status: domain.StatusEnrolled}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	n, err := repo.DeleteMatching(ctx, ports.EnrollmentFilter{CourseID: "c1"})
	if err != nil || n != 2 {
		t.Fatalf("expected 2 removed, got %d, %v", n, err)
	}
	left, _ := repo.List(ctx, ports.EnrollmentFilter{})
	if len(left) != 1 || left[0].CourseID != "c2" {
		t.Fatalf("unexpected remaining enrollments: %+v", left)
	}

	if _, err := repo.DeleteMatching(ctx, ports.EnrollmentFilter{}); err == nil {
		t.Fatalf("expected empty filter to be rejected")
	}
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	a, err := repo.Create(ctx, &domain.User{Name: "A", Email: "a@example.com", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, &domain.User{Name: "A2", Email: "a@example.com"}); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	b, _ := repo.Create(ctx, &domain.User{Name: "B", Email: "b@example.com"})
	b.Email = a.Email
	if _, err := repo.Update(ctx, b); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey on update, got %v", err)
	}

	b.Email = "b2@example.com"
	if _, err := repo.Update(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "b@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("old email should be released, got %v", err)
	}
}
