package domain

import "time"

// Course is owned by the instructor who created it.
type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	InstructorID string    `json:"instructor_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnerID returns the id allowed to mutate the course without admin rights.
func (c *Course) OwnerID() string { return c.InstructorID }
