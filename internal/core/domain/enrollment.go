package domain

import "time"

// EnrollmentStatus represents the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	StatusEnrolled  EnrollmentStatus = "enrolled"
	StatusCompleted EnrollmentStatus = "completed"
	StatusDropped   EnrollmentStatus = "dropped"
)

// validTransitions defines the allowed state machine transitions. Completed
// and dropped are terminal.
var validTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	StatusEnrolled: {StatusCompleted, StatusDropped},
}

// Valid reports whether s is a known status value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusEnrolled, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseEnrollmentStatus converts s into a status, rejecting unknown values.
func ParseEnrollmentStatus(s string) (EnrollmentStatus, error) {
	st := EnrollmentStatus(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Enrollment links one student to one course. At most one record exists per
// (StudentID, CourseID) pair; the store enforces this.
type Enrollment struct {
	ID        string           `json:"id"`
	StudentID string           `json:"student_id"`
	CourseID  string           `json:"course_id"`
	Status    EnrollmentStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// OwnerID returns the enrolled student's id.
func (e *Enrollment) OwnerID() string { return e.StudentID }
