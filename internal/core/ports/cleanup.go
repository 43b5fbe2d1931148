package ports

import "context"

// CleanupKind names the resource whose enrollments must be removed.
type CleanupKind string

const (
	CleanupCourse  CleanupKind = "course"
	CleanupStudent CleanupKind = "student"
)

// CleanupJob asks for every enrollment referencing ID to be deleted.
type CleanupJob struct {
	Kind CleanupKind
	ID   string
}

// CleanupScheduler accepts jobs for asynchronous processing. Jobs for the
// same ID are processed in submission order. Schedule fails once the
// scheduler has been stopped.
type CleanupScheduler interface {
	Schedule(job CleanupJob) error
}

// CleanupService performs a single job.
type CleanupService interface {
	Process(ctx context.Context, job CleanupJob) error
}
