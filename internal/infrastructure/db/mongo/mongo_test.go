package mongo

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lms-g2/lms-api/internal/core/domain"
	"github.com/lms-g2/lms-api/internal/core/ports"
)

// testDB connects to the server named by LMS_TEST_MONGO_URI and returns a
// throwaway database with indexes in place. The test is skipped when the
// variable is unset.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("LMS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("LMS_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Config{URI: uri, Database: "lms_test_" + uuid.NewString()[:8], Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}

func TestEnrollmentRepository_UniqueIndexUnderConcurrency(t *testing.T) {
	repo := NewEnrollmentRepository(testDB(t))
	const n = 20

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
			now := time.Now().UTC()
			_, err := repo.Create(context.Background(), &domain.Enrollment{
				StudentID: "s1", CourseID: "c1", Status: domain.StatusEnrolled, CreatedAt: now, UpdatedAt: now,
			})
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

func TestEnrollmentRepository_StatusCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := NewEnrollmentRepository(testDB(t))

	e, err := repo.Create(ctx, &domain.Enrollment{StudentID: "s1", CourseID: "c1", Status: domain.StatusEnrolled, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, e.ID, domain.StatusEnrolled, domain.StatusDropped); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, e.ID, domain.StatusEnrolled, domain.StatusCompleted); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	n, err := repo.DeleteMatching(ctx, ports.EnrollmentFilter{CourseID: "c1"})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 removed, got %d, %v", n, err)
	}
	if _, err := repo.UpdateStatus(ctx, e.ID, domain.StatusDropped, domain.StatusCompleted); !errors.Is(err, domain.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound after delete, got %v", err)
	}
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB(t))

	if _, err := repo.Create(ctx, &domain.User{Name: "A", Email: "a@example.com", Role: domain.RoleStudent}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, &domain.User{Name: "B", Email: "a@example.com", Role: domain.RoleStudent}); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestRepositories_MalformedIDIsNotFound(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := NewUserRepository(db).FindByID(ctx, "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := NewCourseRepository(db).FindByID(ctx, "nope"); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
	if err := NewEnrollmentRepository(db).Delete(ctx, "nope"); !errors.Is(err, domain.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound, got %v", err)
	}
}
