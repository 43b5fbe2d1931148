package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lms-g2/lms-api/internal/core/domain"
)

func testCache(t *testing.T) *CourseCache {
	t.Helper()
	addr := os.Getenv("LMS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LMS_TEST_REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewCourseCache(client, time.Minute)
}

func TestCourseCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := testCache(t)
	id := uuid.NewString()

	got, gen, err := cache.Get(ctx, id)
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %+v, %v", got, err)
	}

	course := &domain.Course{ID: id, Title: "Go 101", InstructorID: "i1", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := cache.Set(ctx, course, gen); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _, err = cache.Get(ctx, id)
	if err != nil || got == nil || got.Title != "Go 101" || got.InstructorID != "i1" {
		t.Fatalf("expected hit, got %+v, %v", got, err)
	}

	if err := cache.Invalidate(ctx, id); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if got, _, _ := cache.Get(ctx, id); got != nil {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestCourseCache_SetSkipsValueReadBeforeInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := testCache(t)
	id := uuid.NewString()

	_, staleGen, err := cache.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := cache.Invalidate(ctx, id); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	stale := &domain.Course{ID: id, Title: "Old title", InstructorID: "i1"}
	if err := cache.Set(ctx, stale, staleGen); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, freshGen, err := cache.Get(ctx, id)
	if err != nil || got != nil {
		t.Fatalf("stale value must not be cached, got %+v, %v", got, err)
	}
	if freshGen != staleGen+1 {
		t.Fatalf("expected generation %d, got %d", staleGen+1, freshGen)
	}

	fresh := &domain.Course{ID: id, Title: "New title", InstructorID: "i1"}
	if err := cache.Set(ctx, fresh, freshGen); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _, _ := cache.Get(ctx, id); got == nil || got.Title != "New title" {
		t.Fatalf("expected fresh value cached, got %+v", got)
	}
}

func TestParseGeneration(t *testing.T) {
	if gen, err := parseGeneration(nil); err != nil || gen != 0 {
		t.Fatalf("missing generation should be 0, got %d, %v", gen, err)
	}
	if gen, err := parseGeneration("7"); err != nil || gen != 7 {
		t.Fatalf("expected 7, got %d, %v", gen, err)
	}
	if _, err := parseGeneration("x"); err == nil {
		t.Fatalf("expected error for a corrupt generation")
	}
}

func TestNewCourseCache_DefaultTTL(t *testing.T) {
	if c := NewCourseCache(nil, 0); c.ttl != defaultCourseTTL {
		t.Fatalf("expected default ttl, got %v", c.ttl)
	}
}
